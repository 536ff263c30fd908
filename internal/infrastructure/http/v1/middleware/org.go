package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"fleettrack/internal/core/apperror"
	appctx "fleettrack/internal/core/context"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/catalogs/organization"
)

// OrgHeader is the HTTP header carrying the organization scope.
const OrgHeader = "X-Org-ID"

// OrgResolver loads an active organization, NotFound otherwise.
type OrgResolver interface {
	Resolve(ctx context.Context, orgID id.ID) (*organization.Organization, error)
}

// OrgScope middleware resolves X-Org-ID to an active organization and scopes
// the request context to it. Must run after Auth: a token issued for another
// organization cannot scope into this one.
func OrgScope(resolver OrgResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw := c.GetHeader(OrgHeader)
		if raw == "" {
			_ = c.Error(
				apperror.NewValidation("organization is required").
					WithDetail("header", OrgHeader),
			)
			c.Abort()
			return
		}

		orgID, err := id.Parse(raw)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid organization id").
					WithDetail("header", OrgHeader).
					WithDetail("value", raw),
			)
			c.Abort()
			return
		}

		if user := appctx.GetUser(ctx); user != nil && user.OrgID != "" && user.OrgID != orgID.String() {
			_ = c.Error(
				apperror.NewForbidden("organization mismatch").
					WithDetail("header_org_id", orgID.String()).
					WithDetail("token_org_id", user.OrgID),
			)
			c.Abort()
			return
		}

		org, err := resolver.Resolve(ctx, orgID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx = appctx.WithOrgID(ctx, org.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Set("org_id", org.ID)

		c.Next()
	}
}

// OrgIDFrom returns the scoped organization id set by OrgScope.
func OrgIDFrom(c *gin.Context) id.ID {
	if v, exists := c.Get("org_id"); exists {
		if orgID, ok := v.(id.ID); ok {
			return orgID
		}
	}
	return id.Nil()
}
