package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxClientIP  ContextKey = "ctx_client_ip"

	// DefaultUserID is used for requests that carry no caller identity
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderPageCount = "X-Page-Count"
	HeaderHistoryID = "X-History-ID"
	HeaderRetry     = "Retry-After"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(CtxClientIP).(string); ok {
		return ip
	}
	return ""
}

// WithUserID returns a copy of ctx carrying the caller's user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, CtxClientIP, ip)
}
