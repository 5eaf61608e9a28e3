// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// SecurityHeaders attaches the hardening headers a public JSON API needs when
// browsers on the church website call it cross-origin. HSTS is opt-in and only
// emitted for HTTPS requests.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures HTTP security headers emitted by SecurityHeaders.
//
// EnableHSTS controls whether to emit Strict-Transport-Security for HTTPS
// requests (never for plain HTTP). HSTSMaxAge defaults to 180 days.
//
// NoStore, when true, adds Cache-Control: no-store (plus legacy Pragma/Expires).
// Leave it off for the public read routes: they rely on ETag revalidation.
//
// EnablePolicy adds Permissions-Policy, X-Permitted-Cross-Domain-Policies and
// Cross-Origin-Opener-Policy.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

// exposedHeaders are the response headers browser clients may read.
var exposedHeaders = []string{"X-Request-ID", "ETag", "Retry-After"}

// SecurityHeaders returns a Gin middleware that adds security headers to each
// response.
//
// Always set: X-Content-Type-Options, X-Frame-Options, Referrer-Policy and
// X-DNS-Prefetch-Control. When X-Request-ID is already on the response it is
// exposed, together with ETag and Retry-After, via
// Access-Control-Expose-Headers without clobbering existing entries.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-DNS-Prefetch-Control", "off")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get("X-Request-ID") != "" {
			const hdr = "Access-Control-Expose-Headers"
			h.Set(hdr, appendHeaderList(h.Get(hdr), exposedHeaders...))
		}

		c.Next()
	}
}

// appendHeaderList adds each name to the comma-separated list cur unless it
// is already present (case-insensitive).
func appendHeaderList(cur string, names ...string) string {
	seen := map[string]bool{}
	var parts []string
	for _, p := range strings.Split(cur, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
			seen[strings.ToLower(p)] = true
		}
	}
	for _, n := range names {
		if !seen[strings.ToLower(n)] {
			parts = append(parts, n)
			seen[strings.ToLower(n)] = true
		}
	}
	return strings.Join(parts, ", ")
}

// isHTTPS reports whether the incoming request used HTTPS either directly
// (r.TLS != nil) or via a reverse proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
