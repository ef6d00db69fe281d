package api

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lambdaless-api/internal/config"
	"github.com/rs/zerolog"
)

// proxyRoute forwards requests to one upstream base URL
type proxyRoute struct {
	cfg   config.ProxyRoute
	proxy *httputil.ReverseProxy
}

// registerProxyRoutes mounts /proxy/*path when any route is configured.
// The first path segment selects the route; the remainder is appended to
// the upstream base path.
func registerProxyRoutes(router *gin.Engine, cfg config.ProxyConfig, log zerolog.Logger) {
	if len(cfg.Routes) == 0 {
		return
	}

	log = log.With().Str("handler", "proxy").Logger()
	routes := make(map[string]*proxyRoute, len(cfg.Routes))
	for _, r := range cfg.Routes {
		routes[r.Name] = &proxyRoute{
			cfg:   r,
			proxy: newReverseProxy(r.Target, cfg.Timeout, log),
		}
		log.Info().
			Str("route", r.Name).
			Str("method", r.Method).
			Str("target", r.Target.String()).
			Bool("exact", r.Exact).
			Msg("Proxy route registered")
	}

	router.Any("/proxy/*path", func(c *gin.Context) {
		name, rest := splitProxyPath(c.Param("path"))
		route, ok := routes[name]
		if !ok || (route.cfg.Exact && rest != "") {
			c.JSON(http.StatusNotFound, errorResponse{
				Error:     "unknown proxy route",
				RequestID: requestMeta(c).RequestID,
			})
			return
		}
		if route.cfg.Method != "ANY" && route.cfg.Method != c.Request.Method {
			c.Header("Allow", route.cfg.Method)
			c.JSON(http.StatusMethodNotAllowed, errorResponse{
				Error:     "method not allowed",
				RequestID: requestMeta(c).RequestID,
			})
			return
		}

		out := c.Request.Clone(c.Request.Context())
		out.URL.Path = rest
		out.URL.RawPath = ""
		route.proxy.ServeHTTP(c.Writer, out)
	})
}

// splitProxyPath turns "/ipify/v1/x" into ("ipify", "/v1/x")
func splitProxyPath(p string) (string, string) {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		rest := p[i:]
		if rest == "/" {
			rest = ""
		}
		return p[:i], rest
	}
	return p, ""
}

func newReverseProxy(target *url.URL, timeout time.Duration, log zerolog.Logger) *httputil.ReverseProxy {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
	}

	return &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = joinURLPath(target.Path, req.URL.Path)
			switch {
			case target.RawQuery == "":
			case req.URL.RawQuery == "":
				req.URL.RawQuery = target.RawQuery
			default:
				req.URL.RawQuery = target.RawQuery + "&" + req.URL.RawQuery
			}
			req.Host = target.Host
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn().Err(err).Str("target", target.Host).Msg("Upstream request failed")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "upstream unavailable"})
		},
	}
}

func joinURLPath(base, rest string) string {
	if rest == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + rest
}
