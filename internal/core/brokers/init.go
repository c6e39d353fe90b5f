// Package brokers registers the built-in broker schemas with the core registry.
// Import this package for its side effects to make the schemas available.
package brokers

import "github.com/JonMunkholm/posimport/internal/core"

// Schema keys.
const (
	KeyTastytrade         = "tastytrade"
	KeyInteractiveBrokers = "interactive_brokers"
	KeyThinkorswim        = "thinkorswim"
	KeySchwab             = "schwab"
	KeyRobinhood          = "robinhood"
	KeyWebull             = "webull"
)

// Registration order is the detector's tie-break order, so every schema is
// registered here rather than from its own file.
func init() {
	registerTransforms()

	core.Register(tastytrade)
	core.Register(interactiveBrokers)
	core.Register(thinkorswim)
	core.Register(schwab)
	core.Register(robinhood)
	core.Register(webull)
}
