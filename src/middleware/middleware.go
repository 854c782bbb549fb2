package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MasterSinister2006/securepaytoprint-backend/logger"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/schemas"
)

// AdminKeyHeader carries the shared administrative key.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth guards the administrative endpoints with a shared key.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !IsPrivileged(ctx, adminKey) {
			if logger.Logger != nil {
				logger.Logger.Warn("Rejected admin request from ", ctx.ClientIP())
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, schemas.NewErrorResponse(
				http.StatusUnauthorized,
				"Unauthorized",
				"missing or invalid admin key",
				ctx.FullPath(),
			))
			return
		}
		ctx.Next()
	}
}

// IsPrivileged reports whether the request carries a valid admin key. Public
// endpoints use this for the paper-shortage override without forcing the
// whole route behind AdminAuth.
func IsPrivileged(ctx *gin.Context, adminKey string) bool {
	header := ctx.GetHeader(AdminKeyHeader)
	if header == "" || adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(adminKey)) == 1
}
