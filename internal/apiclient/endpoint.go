package apiclient

import (
	"net"
	"net/url"
	"runtime"
	"strings"
)

const (
	// DefaultPort is the port the backend listens on.
	DefaultPort = "8080"
	// PathPrefix is prepended to every endpoint path.
	PathPrefix = "/api"

	defaultHost         = "localhost"
	androidEmulatorHost = "10.0.2.2"
)

// ResolveBaseURL derives the API base URL from the address the development host
// is reachable at. hostURI may be "host", "host:port" or "scheme://host:port";
// only the host part is kept. When it is empty, Android falls back to the
// emulator's alias for the host loopback and everything else to localhost.
func ResolveBaseURL(hostURI string) string {
	return resolveBaseURL(hostURI, runtime.GOOS)
}

func resolveBaseURL(hostURI, goos string) string {
	host := hostFromURI(hostURI)
	if host == "" {
		host = defaultHost
		if goos == "android" {
			host = androidEmulatorHost
		}
	}
	return "http://" + net.JoinHostPort(host, DefaultPort) + PathPrefix
}

func hostFromURI(hostURI string) string {
	hostURI = strings.TrimSpace(hostURI)
	if hostURI == "" {
		return ""
	}
	if strings.Contains(hostURI, "://") {
		u, err := url.Parse(hostURI)
		if err != nil {
			return ""
		}
		return u.Hostname()
	}
	hostURI, _, _ = strings.Cut(hostURI, "/")
	if host, _, err := net.SplitHostPort(hostURI); err == nil {
		return host
	}
	return strings.Trim(hostURI, "[]")
}
