// Package autostart registers the program to start when the user logs in.
// Only Windows is supported; other platforms return ErrUnsupported.
package autostart

import (
	"errors"
	"strings"
)

// ValueName is the name the program is registered under.
const ValueName = "SnipAndAutosave"

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("autostart: not supported on this platform")

// Command builds the command line stored in the registration: the quoted
// executable path followed by args.
func Command(exe string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, `"`+exe+`"`)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}
