package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ntarasov/cloudpipe/pkg/httpx"
)

func TestClampInt(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{11, 1, 10, 10},
		{-3, 0, 100, 0},
	}
	for _, tc := range cases {
		if got := httpx.ClampInt(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("ClampInt(%d,%d,%d)=%d, want %d", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func parseLimitFor(t *testing.T, query string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var got int
	r.GET("/x", func(c *gin.Context) {
		got = httpx.ParseLimit(c, 20, 100)
		c.String(http.StatusOK, strconv.Itoa(got))
	})

	req := httptest.NewRequest(http.MethodGet, "/x"+query, nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestParseLimit(t *testing.T) {
	if got := parseLimitFor(t, ""); got != 20 {
		t.Fatalf("default: got %d, want 20", got)
	}
	if got := parseLimitFor(t, "?limit=7"); got != 7 {
		t.Fatalf("explicit: got %d, want 7", got)
	}
	if got := parseLimitFor(t, "?limit=1000"); got != 100 {
		t.Fatalf("clamped: got %d, want 100", got)
	}
	if got := parseLimitFor(t, "?limit=abc"); got != 20 {
		t.Fatalf("garbage: got %d, want 20", got)
	}
}
