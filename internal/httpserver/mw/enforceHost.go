package mw

import (
	"net/http"
	"strings"

	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/utils"
)

// hostRules is the compiled allow-list: exact names plus "*.suffix" wildcards.
type hostRules struct {
	exact    map[string]struct{}
	suffixes []string // ".example.com" for "*.example.com"
}

func compileHosts(hosts []string) hostRules {
	rules := hostRules{exact: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(utils.ParseHostNoPort(strings.TrimSpace(h)))
		if suffix, ok := strings.CutPrefix(h, "*"); ok && strings.HasPrefix(suffix, ".") {
			rules.suffixes = append(rules.suffixes, suffix)
			continue
		}
		if h != "" {
			rules.exact[h] = struct{}{}
		}
	}
	return rules
}

func (hr hostRules) empty() bool { return len(hr.exact) == 0 && len(hr.suffixes) == 0 }

func (hr hostRules) match(host string) bool {
	if _, ok := hr.exact[host]; ok {
		return true
	}
	for _, s := range hr.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// EnforceHost rejects requests whose Host header (port ignored,
// case-insensitive) is not in allowedHosts. A "*.example.com" entry matches
// subdomains only. An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	rules := compileHosts(allowedHosts)
	if rules.empty() {
		return func(next http.Handler) http.Handler { return next }
	}
	log.Debug("host allow-list enabled", logger.Strings("hosts", allowedHosts))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rules.match(strings.ToLower(utils.ParseHostNoPort(r.Host))) {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("host rejected", logger.String("host", r.Host))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
