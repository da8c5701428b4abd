package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Logger captures the logging contract of the middleware.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Middleware rejects requests over the limit with 429. Limiter errors let
// the request through. Callers are keyed by proxies.ClientIP.
func Middleware(l Limiter, proxies Proxies, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := proxies.ClientIP(r)
			if ip == "" || l == nil {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := l.Allow(r.Context(), ip)
			if err != nil {
				if logger != nil {
					logger.Errorf("rate limit check for %s failed: %v", ip, err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Proxies lists the peers whose X-Forwarded-For header is believed.
// The zero value trusts nobody.
type Proxies struct {
	nets []*net.IPNet
}

// ParseProxies reads a comma separated list of IPs and CIDR blocks.
func ParseProxies(list string) (Proxies, error) {
	var p Proxies
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			ip := net.ParseIP(item)
			if ip == nil {
				return Proxies{}, errors.Errorf("invalid proxy address %q", item)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(item)
		if err != nil {
			return Proxies{}, errors.Wrapf(err, "invalid proxy range %q", item)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

func (p Proxies) trusts(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address. When the peer is a trusted proxy the
// X-Forwarded-For chain is walked from the right and the first hop that is
// not a trusted proxy wins.
func (p Proxies) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !p.trusts(host) {
		return host
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(v, ",")...)
	}
	client := host
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			break
		}
		client = hop
		if !p.trusts(hop) {
			break
		}
	}
	return client
}
