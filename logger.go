package substate

import (
	"log"
	"os"
)

// defaultLogger is used for best-effort diagnostics that must never fail a
// caller outright — notably a notification subscriber panicking at the
// dispatch boundary (§7). The teacher codebase logs the same way, with the
// standard library logger rather than a structured logging dependency.
var defaultLogger = log.New(os.Stderr, "substate: ", log.LstdFlags)

// SetLogger overrides the package-level logger used for recovered
// subscriber panics and other non-fatal diagnostics.
func SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	defaultLogger = l
}
