package mw

import (
	"net/http"

	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/utils"
)

// OperatorOnly guards the operational endpoints (/debug, /audit, /readyz).
// Only clients inside cidrs get through; an empty list disables the check.
// Proxy headers are consulted only when trustProxy is set.
func OperatorOnly(cidrs []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(cidrs)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}
	log.Debugf("OperatorOnly: %d rules, trustProxy=%v", len(cidrs), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if m.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("operator endpoint refused",
				logger.String("path", r.URL.Path),
				logger.String("remote_ip", ip),
				logger.String("remote_addr", r.RemoteAddr))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
