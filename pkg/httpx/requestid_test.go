package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ntarasov/cloudpipe/pkg/ctxmeta"
	"github.com/ntarasov/cloudpipe/pkg/httpx"
)

func newRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httpx.RequestIDMiddleware())

	var seen string
	r.GET("/x", func(c *gin.Context) {
		if rid, ok := ctxmeta.RequestIDFromContext(c.Request.Context()); ok {
			seen = rid
		}
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestRequestID_FromHeader(t *testing.T) {
	r, seen := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "client-rid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if *seen != "client-rid" {
		t.Fatalf("handler saw %q, want client-rid", *seen)
	}
	if got := w.Header().Get("X-Request-ID"); got != "client-rid" {
		t.Fatalf("response header %q, want client-rid", got)
	}
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	r, seen := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if *seen == "" {
		t.Fatal("request_id was not generated")
	}
	if got := w.Header().Get("X-Request-ID"); got != *seen {
		t.Fatalf("response header %q != context value %q", got, *seen)
	}
}
