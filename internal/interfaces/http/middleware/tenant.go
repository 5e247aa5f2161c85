package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockcore/backend/internal/interfaces/http/dto"
)

// TenantIDKey is the context key the tenant middleware stores the tenant under
const TenantIDKey = "tenant_id"

// TenantHeader is the request header carrying the caller's tenant
const TenantHeader = "X-Tenant-ID"

// defaultTenantID is used when no header is present so local development
// works without an identity provider in front of the service.
var defaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Tenant resolves the tenant from the X-Tenant-ID header and stores it in
// the request context. Requests with a malformed tenant ID are rejected.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			c.Set(TenantIDKey, defaultTenantID)
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(400, dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid tenant ID"))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok
}
