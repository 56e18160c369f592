package middleware

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func serve(h http.Handler, remote, fwd string) int {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = remote
	if fwd != "" {
		req.Header.Set("X-Forwarded-For", fwd)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAllowlist(t *testing.T) {
	a, err := NewAllowlist(quiet, []string{"10.0.0.0/8", " 192.168.1.5 ", "", "::1"}, "")
	require.NoError(t, err)
	assert.True(t, a.Allowed(net.ParseIP("10.2.3.4")))
	assert.True(t, a.Allowed(net.ParseIP("::1")))
	assert.False(t, a.Allowed(net.ParseIP("192.168.1.6")))

	h := a.Wrap(ok)
	assert.Equal(t, http.StatusOK, serve(h, "192.168.1.5:5555", ""))
	assert.Equal(t, http.StatusForbidden, serve(h, "8.8.8.8:5555", ""))
	assert.Equal(t, http.StatusForbidden, serve(h, "garbage", ""))
}

func TestAllowlistRealIPHeader(t *testing.T) {
	a, err := NewAllowlist(quiet, []string{"10.0.0.1"}, "X-Forwarded-For")
	require.NoError(t, err)
	h := a.Wrap(ok)
	assert.Equal(t, http.StatusOK, serve(h, "8.8.8.8:1", "10.0.0.1, 172.16.0.1"))
	assert.Equal(t, http.StatusForbidden, serve(h, "10.0.0.1:1", "8.8.8.8"))
}

func TestAllowlistEmptyPassesThrough(t *testing.T) {
	a, err := NewAllowlist(quiet, nil, "")
	require.NoError(t, err)
	assert.True(t, a.Empty())
	assert.Equal(t, http.StatusOK, serve(a.Wrap(ok), "8.8.8.8:1", ""))
}

func TestAllowlistRejectsBadEntries(t *testing.T) {
	_, err := NewAllowlist(quiet, []string{"10.0.0.0/99"}, "")
	assert.Error(t, err)
	_, err = NewAllowlist(quiet, []string{"not-an-ip"}, "")
	assert.Error(t, err)
}

func TestAllowlistFromEnv(t *testing.T) {
	t.Setenv("METRICS_ALLOW", "127.0.0.1,10.0.0.0/8")
	t.Setenv("METRICS_REAL_IP_HEADER", "")
	a, err := AllowlistFromEnv(quiet)
	require.NoError(t, err)
	assert.False(t, a.Empty())
	assert.True(t, a.Allowed(net.ParseIP("127.0.0.1")))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	serve(Chain(mk("outer"), mk("inner"))(ok), "1.1.1.1:1", "")
	assert.Equal(t, []string{"outer", "inner"}, order)
}
