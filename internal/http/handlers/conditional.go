package handlers

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/http/middleware"
	"github.com/tbourn/go-church-backend/internal/services"
)

// listStatser is implemented by services whose listings support ETags.
type listStatser interface {
	Stats(ctx context.Context) (services.ListStats, error)
}

// notModified sets a weak ETag for the listing and answers 304 when
// If-None-Match already carries it. variant distinguishes query shapes of
// the same listing (page, filters). A failing stats query skips the check.
func notModified(c *gin.Context, s listStatser, resource, variant string) bool {
	st, err := s.Stats(c.Request.Context())
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("resource", resource).Msg("etag stats failed")
		return false
	}
	var ts int64
	if st.MaxUpdatedAt != nil {
		ts = st.MaxUpdatedAt.UnixNano()
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(variant))
	etag := fmt.Sprintf(`W/"%s:%x:%d:%d"`, resource, h.Sum32(), st.Count, ts)

	c.Header("ETag", etag)
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.AbortWithStatus(http.StatusNotModified)
		return true
	}
	return false
}

// etagMatches reports whether the If-None-Match header lists etag or "*".
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
