// 包 middleware：指标端点的来源地址白名单
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
)

// Allowlist：允许访问的单 IP 与 CIDR 集合；为空时放行全部请求
type Allowlist struct {
	l            *slog.Logger
	ips          map[string]struct{}
	cidrs        []*net.IPNet
	realIPHeader string
}

// NewAllowlist：entries 可混合单 IP 与 CIDR（v4/v6）
// 约束：无法解析的条目返回错误，避免白名单被静默放宽
func NewAllowlist(l *slog.Logger, entries []string, realIPHeader string) (*Allowlist, error) {
	a := &Allowlist{l: l, ips: map[string]struct{}{}, realIPHeader: strings.TrimSpace(realIPHeader)}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			_, n, err := net.ParseCIDR(e)
			if err != nil {
				return nil, fmt.Errorf("allowlist entry %q: %w", e, err)
			}
			a.cidrs = append(a.cidrs, n)
			continue
		}
		ip := net.ParseIP(e)
		if ip == nil {
			return nil, fmt.Errorf("allowlist entry %q: invalid ip", e)
		}
		a.ips[ip.String()] = struct{}{}
	}
	return a, nil
}

// AllowlistFromEnv：METRICS_ALLOW 逗号分隔；METRICS_REAL_IP_HEADER 指定上游真实 IP 头
func AllowlistFromEnv(l *slog.Logger) (*Allowlist, error) {
	var entries []string
	if s := os.Getenv("METRICS_ALLOW"); s != "" {
		entries = strings.Split(s, ",")
	}
	return NewAllowlist(l, entries, os.Getenv("METRICS_REAL_IP_HEADER"))
}

func (a *Allowlist) Empty() bool { return len(a.ips) == 0 && len(a.cidrs) == 0 }

// Allowed：判断 IP 是否在允许集合
func (a *Allowlist) Allowed(ip net.IP) bool {
	if _, ok := a.ips[ip.String()]; ok {
		return true
	}
	for _, n := range a.cidrs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP：优先指定头的首个有效 IP，否则取 RemoteAddr
func (a *Allowlist) clientIP(r *http.Request) net.IP {
	if a.realIPHeader != "" {
		if raw := r.Header.Get(a.realIPHeader); raw != "" {
			first := strings.TrimSpace(strings.Split(raw, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}

// Wrap：生成 http.Handler 中间件；白名单为空时原样返回
func (a *Allowlist) Wrap(next http.Handler) http.Handler {
	if a.Empty() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.clientIP(r)
		if ip == nil || !a.Allowed(ip) {
			a.l.Debug("metrics_access_block", "remote", r.RemoteAddr)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Chain：按顺序组合中间件，第一个位于最外层
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
