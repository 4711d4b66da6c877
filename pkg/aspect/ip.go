package aspect

import (
	"net"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/router"
)

// IPSourceType defines the source for client IP addresses
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the request's RemoteAddr field
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the leftmost X-Forwarded-For entry
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"

	// IPSourceCustomHeader uses IPConfig.CustomHeader
	IPSourceCustomHeader IPSourceType = "custom_header"
)

// IPConfig defines where ClientIP looks for the peer address.
type IPConfig struct {
	Source       IPSourceType
	CustomHeader string

	// TrustProxy enables the header sources. When false RemoteAddr is always used.
	TrustProxy bool
}

// DefaultIPConfig returns the default IP configuration
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

type clientIPKey struct{}

// ClientIPAspect resolves the client address once per request. Read it back
// with ClientIP.
func ClientIPAspect(config *IPConfig) common.Aspect {
	if config == nil {
		config = DefaultIPConfig()
	}
	return common.AspectFuncs{
		BeforeFunc: func(w http.ResponseWriter, r *http.Request) {
			router.SetValue(r, clientIPKey{}, extractClientIP(r, config))
		},
	}
}

// ClientIP returns the address stored by ClientIPAspect, or the host part of
// RemoteAddr when the aspect is not installed.
func ClientIP(r *http.Request) string {
	if ip, ok := router.Value(r, clientIPKey{}).(string); ok {
		return ip
	}
	return stripPort(r.RemoteAddr)
}

func extractClientIP(r *http.Request, config *IPConfig) string {
	var ip string
	if config.TrustProxy {
		switch config.Source {
		case IPSourceXRealIP:
			ip = r.Header.Get("X-Real-IP")
		case IPSourceCustomHeader:
			ip = r.Header.Get(config.CustomHeader)
		case IPSourceRemoteAddr:
		default:
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				ip, _, _ = strings.Cut(xff, ",")
			}
		}
	}

	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = r.RemoteAddr
	}
	return stripPort(ip)
}

// stripPort drops a trailing port. Bare IPv6 addresses are returned as is.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}
