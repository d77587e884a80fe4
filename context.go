package storegate

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// for per-IP rate limiting and audit events; without it only per-email
// limits apply.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
