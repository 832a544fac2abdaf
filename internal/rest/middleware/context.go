package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/types"
)

// RequestContextMiddleware copies the request id, tenant and user headers onto
// the request context. Requests without a tenant header run as the default tenant.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(types.HeaderRequestID)
		if requestID == "" {
			requestID = types.GenerateUUID()
		}
		c.Header(types.HeaderRequestID, requestID)

		tenantID := c.GetHeader(types.HeaderTenantID)
		if tenantID == "" {
			tenantID = types.DefaultTenantID
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		ctx = types.SetTenantID(ctx, tenantID)
		if userID := c.GetHeader(types.HeaderUserID); userID != "" {
			ctx = types.SetUserID(ctx, userID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
