package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/logger"
)

type ErrorResponse struct {
	Error string              `json:"error" example:"Room not found"`
	Code  apperrors.ErrorCode `json:"code" example:"ROOM_NOT_FOUND"`
}

func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.HTTPStatus >= 500 {
		logger.Error("request failed",
			zap.String("method", c.Request.Method), zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}
