package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteError aborts the request with the status and body for err.
func WriteError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := appErr.StatusCode()
	message := appErr.Message
	switch appErr.Kind {
	case apperror.Internal, apperror.Transient:
		log.Printf("[ErrorHandler] %s %s: %v", c.Request.Method, c.FullPath(), err)
		if appErr.Kind == apperror.Internal {
			message = "internal server error"
		}
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: appErr.ErrorCode()})
}

// ErrorHandler renders the last error a handler attached with c.Error, unless
// the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// Recovery turns a panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("[Recovery] panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  apperror.Internal.String(),
		})
	})
}
