package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/logger"
)

// Recovery converts a panic in a downstream handler into a generic 500.
type Recovery struct{}

func (Recovery) Intercept(c *gin.Context, next func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if r == http.ErrAbortHandler {
			panic(r)
		}

		logger.Error("panic recovered", map[string]any{
			"path":  c.Request.URL.Path,
			"panic": fmt.Sprint(r),
			"stack": string(debug.Stack()),
		})

		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
		})
	}()

	next()
}
