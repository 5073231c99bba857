package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/roach88/awbridge/internal/config"
)

// corsPolicy decides which browser origins may call the API.
type corsPolicy struct {
	exact   map[string]bool
	regexes []*regexp.Regexp
}

func newCORSPolicy(cfg config.AWConfig) *corsPolicy {
	p := &corsPolicy{exact: map[string]bool{}}

	origins := []string{
		fmt.Sprintf("http://127.0.0.1:%d", cfg.Port),
		fmt.Sprintf("http://localhost:%d", cfg.Port),
		"http://127.0.0.1:5600",
		"http://127.0.0.1:5601",
		"http://localhost:5600",
		"http://localhost:5601",
	}
	origins = append(origins, cfg.CORS...)
	if cfg.Testing {
		origins = append(origins, "http://127.0.0.1:27180", "http://localhost:27180")
	}
	for _, o := range origins {
		p.exact[o] = true
	}

	patterns := []string{
		"chrome-extension://nglaklhklhcoonedhgnpgddginnjdadi",
		// Every Firefox extension build gets its own id.
		"moz-extension://.*",
	}
	if cfg.Testing {
		patterns = append(patterns, "chrome-extension://.*")
	}
	for _, pat := range patterns {
		p.regexes = append(p.regexes, regexp.MustCompile("^"+pat+"$"))
	}
	return p
}

func (p *corsPolicy) allowed(origin string) bool {
	if p.exact[origin] {
		return true
	}
	for _, re := range p.regexes {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// middleware sets CORS headers for allowed origins and answers preflights.
func (p *corsPolicy) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && p.allowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE")
			if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
			}
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if origin == "" || !p.allowed(origin) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// originList is used for diagnostics.
func (p *corsPolicy) originList() string {
	list := make([]string, 0, len(p.exact))
	for o := range p.exact {
		list = append(list, o)
	}
	return strings.Join(list, ",")
}
