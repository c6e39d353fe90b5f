package core

import "context"

type contextKey string

const (
	ctxKeySource   contextKey = "import_source"
	ctxKeyClientIP contextKey = "import_client_ip"
)

// ContextWithSource records where the import text came from (file name,
// upload field) for log correlation.
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// ContextWithClientIP adds the requesting client's address to context.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// SourceFromContext extracts the import source from context.
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok {
		return v
	}
	return ""
}

// ClientIPFromContext extracts the client address from context.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}
