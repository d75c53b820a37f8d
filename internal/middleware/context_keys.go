package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey prevents collisions with keys from other packages.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	subjectKey   = contextKey("subject")
)

// GetSubjectFromContext returns the authenticated token subject, if any.
func GetSubjectFromContext(c *gin.Context) (string, bool) {
	return SubjectFromCtx(c.Request.Context())
}

// SubjectFromCtx reads the authenticated subject from a standard context.
func SubjectFromCtx(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}
