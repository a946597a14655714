package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// cachedPage holds one captured GET response.
type cachedPage struct {
	status      int
	contentType string
	body        []byte
}

type pageCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *pageCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheResponses serves repeated GET requests from an in-memory cache keyed
// by request URI. Used on the discovery routes, where slightly stale vendor
// data is acceptable.
func CacheResponses(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if hit, found := store.Get(key); found {
			page := hit.(cachedPage)
			c.Data(page.status, page.contentType, page.body)
			c.Abort()
			return
		}

		capture := &pageCapture{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = capture

		c.Next()

		if capture.Status() >= 200 && capture.Status() < 300 {
			store.Set(key, cachedPage{
				status:      capture.Status(),
				contentType: capture.Header().Get("Content-Type"),
				body:        capture.body.Bytes(),
			}, ttl)
		}
	}
}
