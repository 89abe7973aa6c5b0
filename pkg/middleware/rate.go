// Package middleware provides the HTTP middleware stack.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/response"
)

// bucket tracks a fixed-window request count for one IP.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

func (b *bucket) expired(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.After(b.resetAt)
}

type limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt time.Time
}

func (l *limiter) get(ip string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Evict expired buckets at most once per window so memory stays bounded.
	if now.After(l.sweepAt) {
		for key, b := range l.buckets {
			if b.expired(now) {
				delete(l.buckets, key)
			}
		}
		l.sweepAt = now.Add(l.window)
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[ip] = b
	}
	return b
}

// trustedProxies parses TRUSTED_PROXIES, a comma separated list of IPs or
// CIDRs whose X-Forwarded-For header is believed.
func trustedProxies() []*net.IPNet {
	var nets []*net.IPNet
	for _, raw := range strings.Split(config.TrustedProxies(), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			if ip := net.ParseIP(raw); ip != nil && ip.To4() != nil {
				raw += "/32"
			} else {
				raw += "/128"
			}
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			logger.Warn("ignoring trusted proxy", "value", raw, "error", err)
			continue
		}
		nets = append(nets, n)
	}
	return nets
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP is the peer address, or the first X-Forwarded-For hop when the
// peer is a trusted proxy.
func clientIP(r *http.Request, trusted []*net.IPNet) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if len(trusted) == 0 || !contains(trusted, net.ParseIP(peer)) {
		return peer
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if hop := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0]); net.ParseIP(hop) != nil {
			return hop
		}
	}
	return peer
}

// RateLimit limits each client IP to max requests per window. Proxies listed
// in TRUSTED_PROXIES are read once, when the middleware is built.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := &limiter{max: max, window: window, buckets: map[string]*bucket{}}
	trusted := trustedProxies()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			if !l.get(clientIP(r, trusted), now).allow(l.max, l.window, now) {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
