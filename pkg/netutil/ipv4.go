// Package netutil carries the IPv4-only egress toggle. Some hosting
// environments advertise IPv6 addresses for api.telegram.org without
// providing IPv6 egress; pinning outbound dials to tcp4 works around that.
package netutil

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Transport returns an HTTP transport for outbound API calls. When
// forceIPv4 is set, every dial is restricted to the IPv4 address family.
func Transport(forceIPv4 bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if forceIPv4 {
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			switch network {
			case "tcp", "tcp6":
				network = "tcp4"
			}
			return dialer.DialContext(ctx, network, addr)
		}
	}

	return transport
}

// Client returns an HTTP client built on Transport. A zero timeout leaves
// per-request deadlines to the caller.
func Client(forceIPv4 bool, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: Transport(forceIPv4),
		Timeout:   timeout,
	}
}
