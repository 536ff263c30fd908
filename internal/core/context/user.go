// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID  string
	OrgID   string // organization the request is scoped to
	Email   string
	Roles   []string
	IsAdmin bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetOrgID returns the scoped organization ID or empty string.
func GetOrgID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.OrgID
	}
	return ""
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithOrgID scopes ctx to an organization without a full user.
// Background jobs use this to reuse org-scoped repositories.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	if u := GetUser(ctx); u != nil {
		clone := *u
		clone.OrgID = orgID
		return WithUser(ctx, &clone)
	}
	return WithUser(ctx, &UserContext{OrgID: orgID})
}
