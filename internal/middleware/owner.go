package middleware

import (
	"context"
	"net/http"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

type contextKey string

const (
	ownerContextKey   contextKey = "owner"
	requestContextKey contextKey = "request_info"
)

// requestInfo is filled in by inner handlers so the logging middleware can
// report values it cannot see on the original request
type requestInfo struct {
	owner model.OwnerID
}

// withRequestInfo returns a request carrying a requestInfo, reusing one installed by an outer middleware
func withRequestInfo(r *http.Request) (*http.Request, *requestInfo) {
	if info, ok := r.Context().Value(requestContextKey).(*requestInfo); ok {
		return r, info
	}
	info := &requestInfo{}
	return r.WithContext(context.WithValue(r.Context(), requestContextKey, info)), info
}

// WithOwner returns a request carrying the owner id, and records it for request logging
func WithOwner(r *http.Request, owner model.OwnerID) *http.Request {
	if info, ok := r.Context().Value(requestContextKey).(*requestInfo); ok {
		info.owner = owner
	}
	return r.WithContext(context.WithValue(r.Context(), ownerContextKey, owner))
}

// GetOwner returns the owner id from the request context
func GetOwner(ctx context.Context) (model.OwnerID, bool) {
	owner, ok := ctx.Value(ownerContextKey).(model.OwnerID)
	return owner, ok && owner != ""
}

// MustGetOwner returns the owner id or panics
func MustGetOwner(ctx context.Context) model.OwnerID {
	owner, ok := GetOwner(ctx)
	if !ok {
		panic("no owner in context - owner middleware not applied?")
	}
	return owner
}
