// Package httperr はクライアント向けエラーと、未処理エラーを 500 に変換する境界を提供します。
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusconnect/backend/internal/middleware"
)

// GenericMessage は未処理エラー時にクライアントへ返す固定メッセージです。
const GenericMessage = "Something went wrong!"

// Error はハンドラーが明示的に返す 4xx エラーです。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ハンドラーで使用するクライアントエラー
var (
	ErrDuplicateEnrollment = &Error{Status: http.StatusBadRequest, Message: "Enrollment already registered"}
	ErrInvalidCredentials  = &Error{Status: http.StatusBadRequest, Message: "Invalid credentials"}
	ErrNotLoggedIn         = &Error{Status: http.StatusUnauthorized, Message: "Not logged in"}
	ErrNotAuthorized       = &Error{Status: http.StatusForbidden, Message: "Not authorized"}
	ErrLoginRequired       = &Error{Status: http.StatusUnauthorized, Message: "Login required"}
	ErrAlreadyRegistered   = &Error{Status: http.StatusBadRequest, Message: "Already registered"}
)

// Respond はエラーを応答に変換します。
// *Error はそのまま返し、それ以外はコンテキストに積んで Boundary に任せます。
func Respond(c *gin.Context, err error) {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		c.AbortWithStatusJSON(clientErr.Status, gin.H{"error": clientErr.Message})
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// Boundary は後続ハンドラーが積んだエラーをログに残し、500 を返すミドルウェアです。
func Boundary(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			logger.Error().
				Err(e.Err).
				Str("request_id", c.GetString(middleware.RequestIDKey)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("unhandled request error")
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": GenericMessage})
		}
	}
}

// Recovery はパニックを捕捉し、Boundary と同じ形式で 500 を返します。
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": GenericMessage})
	})
}
