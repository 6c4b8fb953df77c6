// Package version identifies this client to the service.
package version

import (
	"fmt"
	"runtime"
)

// Version is the client library version. Overridable at build time via
// -ldflags "-X github.com/openqaas/goqaas/internal/version.Version=...".
var Version = "0.3.0"

// UserAgent returns the identification string embedded in model payloads
// and sent with outgoing requests.
func UserAgent() string {
	return fmt.Sprintf("goqaas/%s (%s; %s/%s)", Version, runtime.GOOS, runtime.Compiler, runtime.Version())
}
