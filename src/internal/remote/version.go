package remote

import (
	"fmt"
	"strings"
)

// ServerVersion selects the management API dialect.
type ServerVersion string

const (
	// ServerV11x names APIs "services".
	ServerV11x ServerVersion = "v11x"
	ServerV12x ServerVersion = "v12x"

	DefaultServerVersion = ServerV12x
)

// ParseServerVersion accepts v11x and v12x (case-insensitive). Empty input
// selects DefaultServerVersion.
func ParseServerVersion(s string) (ServerVersion, error) {
	switch ServerVersion(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultServerVersion, nil
	case ServerV11x:
		return ServerV11x, nil
	case ServerV12x:
		return ServerV12x, nil
	default:
		return "", fmt.Errorf("unsupported server version %q (supported: %s, %s)", s, ServerV11x, ServerV12x)
	}
}
