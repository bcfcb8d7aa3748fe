package clicks

import (
	"net"
	"strings"
)

// Locator resolves an IP address to a best-effort country and city.
// Implementations must return promptly; the recorder never blocks a capture
// task on a slow lookup.
type Locator interface {
	Locate(ip string) (country, city string)
}

// StubLocator is the default Locator: loopback and unspecified addresses map
// to a fixed local sentinel, everything else is Unknown until a real geo
// collaborator is wired in.
type StubLocator struct{}

func (StubLocator) Locate(ip string) (string, string) {
	host := ip
	if h, _, err := net.SplitHostPort(ip); err == nil {
		host = h
	}

	if strings.HasPrefix(host, "127.") || host == "::1" || host == "localhost" {
		return "Local", "Localhost"
	}
	if parsed := net.ParseIP(host); parsed != nil && (parsed.IsLoopback() || parsed.IsUnspecified()) {
		return "Local", "Localhost"
	}
	return "Unknown", "Unknown"
}
