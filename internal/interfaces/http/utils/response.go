// Package utils holds the response and query helpers shared by the HTTP
// handlers. Error responses are RFC 7807 problem details.
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "openadr/internal/shared/errors"
	"openadr/internal/wire"
)

// ProblemContentType is the media type of error responses.
const ProblemContentType = "application/problem+json"

// Problem writes an RFC 7807 error body.
func Problem(c *gin.Context, status int, detail string) {
	c.Header("Content-Type", ProblemContentType)
	c.JSON(status, wire.NewProblem(status, detail))
}

// Error maps an application error onto a problem response. Unknown
// errors become opaque 500s so internals never leak.
func Error(c *gin.Context, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		Problem(c, appErr.Code, appErr.Message)
		return
	}
	Problem(c, http.StatusInternalServerError, "internal server error")
}

// AbortWithError writes the problem response and aborts the chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
