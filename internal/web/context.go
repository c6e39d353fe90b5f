package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/posimport/internal/core"
)

// withImportMetadata tags ctx with the import source and client address so the
// importer's run log can be traced back to the request.
func withImportMetadata(ctx context.Context, r *http.Request, source string) context.Context {
	ctx = core.ContextWithSource(ctx, source)
	return core.ContextWithClientIP(ctx, r.RemoteAddr) // already rewritten by middleware.RealIP
}
