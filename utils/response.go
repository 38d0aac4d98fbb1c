package utils

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the uniform body of every failed request.
type ErrorResponse struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Validation map[string]string `json:"validation"`
}

// AppError is an error that knows how it is presented to the client.
type AppError struct {
	Status     int
	Message    string
	Validation map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a client-facing error with the given HTTP status.
func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// InvalidRequest is the 400 error carrying a field-to-message map.
func InvalidRequest(validation map[string]string) *AppError {
	if validation == nil {
		validation = map[string]string{}
	}
	return &AppError{Status: http.StatusBadRequest, Message: "invalid request", Validation: validation}
}

// Error writes an error body with the given status.
func Error(ctx *gin.Context, status int, message string, validation map[string]string) {
	if validation == nil {
		validation = map[string]string{}
	}
	ctx.JSON(status, ErrorResponse{
		Code:       strconv.Itoa(status),
		Message:    message,
		Validation: validation,
	})
}

// Abort writes err as a structured error body and stops the handler chain.
// Errors that are not *AppError are logged and reported as 500.
func Abort(ctx *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(ctx, appErr.Status, appErr.Message, appErr.Validation)
		ctx.Abort()
		return
	}
	Logger.Error("request failed",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
		zap.Error(err),
	)
	Error(ctx, http.StatusInternalServerError, "internal server error", nil)
	ctx.Abort()
}
