package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/CUknot/videocall_backend/config"
	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/models"
)

// Connect opens the relational database selected by cfg.Persistence.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	db := cfg.Database

	switch cfg.Persistence {
	case config.PersistencePostgres:
		dsn := db.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				db.Host, db.User, db.Password, db.Name, db.Port)
		}
		dialector = postgres.Open(dsn)
	case config.PersistenceMySQL:
		dsn := db.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				db.User, db.Password, db.Host, db.Port, db.Name)
		}
		dialector = mysql.Open(dsn)
	case config.PersistenceSQLite:
		dsn := db.DSN
		if dsn == "" {
			dsn = "videocall.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("persistence %q is not a relational backend", cfg.Persistence)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection established", zap.String("driver", cfg.Persistence))
	return conn, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.RoomRow{}, &models.Invitation{}); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logger.Info("Database migration completed")
	return nil
}
