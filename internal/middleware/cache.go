package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// ProjectionCache memoizes successful GET responses for a short TTL. The
// read projections it fronts are pure functions of the last committed
// ledger snapshot, so brief staleness is acceptable.
type ProjectionCache struct {
	store *gocache.Cache
}

func NewProjectionCache(ttl time.Duration) *ProjectionCache {
	return &ProjectionCache{store: gocache.New(ttl, 2*ttl)}
}

func (p *ProjectionCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if cached, ok := p.store.Get(key); ok {
			res := cached.(cachedResponse)
			c.Data(res.status, res.contentType, res.body)
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			p.store.SetDefault(key, cachedResponse{
				status:      c.Writer.Status(),
				contentType: c.Writer.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			})
		}
	}
}
