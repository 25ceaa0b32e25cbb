package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustedProxies makes c.RealIP() see through reverse proxies in the given
// CIDR ranges. The login rate limiter keys on c.RealIP(), so without this
// every visitor behind the same proxy shares one budget. An unparsable
// CIDR is an error; nothing is installed in that case.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) error {
	trusted, err := ParseCIDRs(trustedCIDRs)
	if err != nil {
		return err
	}
	e.IPExtractor = buildIPExtractor(trusted)
	return nil
}

// ParseCIDRs parses each entry as a CIDR range, ignoring surrounding
// whitespace and empty entries.
func ParseCIDRs(cidrs []string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %q: %w", cidr, err)
		}
		out = append(out, network)
	}
	return out, nil
}

// buildIPExtractor trusts only the listed ranges, not Echo's default of
// every loopback and private address. X-Real-IP wins when present and the
// peer is trusted. Otherwise X-Forwarded-For is walked from the right and
// the first untrusted hop is the client, so a spoofed leftmost entry is
// ignored.
func buildIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, network := range trusted {
		opts = append(opts, echo.TrustIPRange(network))
	}

	fromRealIP := echo.ExtractIPFromRealIPHeader(opts...)
	fromXFF := echo.ExtractIPFromXFFHeader(opts...)

	return func(req *http.Request) string {
		if req.Header.Get(echo.HeaderXRealIP) != "" {
			return fromRealIP(req)
		}
		return fromXFF(req)
	}
}
