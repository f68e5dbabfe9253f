package gatewaydelivery

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-roulette/internal/middleware"
	"github.com/go-petr/pet-roulette/pkg/discoverypkg"
	"github.com/go-petr/pet-roulette/pkg/web"
)

// apiPrefix is the path namespace every owning service serves its API under.
const apiPrefix = "/api"

// Proxy forwards requests to the service that owns them.
type Proxy struct {
	resolver  discoverypkg.Resolver
	transport http.RoundTripper
	timeout   time.Duration
}

// NewProxy returns a proxy resolving services with resolver.
// A nil transport means http.DefaultTransport.
func NewProxy(resolver discoverypkg.Resolver, timeout time.Duration, transport http.RoundTripper) *Proxy {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Proxy{
		resolver:  resolver,
		transport: transport,
		timeout:   timeout,
	}
}

// Forward returns a handler sending the request to service.
//
// The mount prefix is replaced by the service API prefix; method, query, body
// and headers other than Host are kept. The origin response, whatever its
// status, is copied back unchanged.
func (p *Proxy) Forward(service, mount string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context()).With().Str("service", service).Logger()

		target, err := p.resolver.Resolve(gctx.Request.Context(), service)
		if err != nil {
			l.Error().Err(err).Msg("resolve service")
			gctx.JSON(http.StatusBadGateway, web.ErrorMsg(service+" unavailable"))

			return
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(gctx.Request.Context()), p.timeout)
		defer cancel()

		rp := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(target)
				rewritePath(pr.Out.URL, target, strings.TrimPrefix(pr.In.URL.EscapedPath(), mount))

				if id := middleware.RequestIDFromContext(pr.In.Context()); id != "" {
					pr.Out.Header.Set(middleware.RequestIDHeader, id)
				}
			},
			Transport: p.transport,
			ModifyResponse: func(res *http.Response) error {
				// The request logger has already set it on the response.
				res.Header.Del(middleware.RequestIDHeader)
				return nil
			},
			ErrorHandler: func(_ http.ResponseWriter, r *http.Request, err error) {
				status, msg := http.StatusBadGateway, service+" unavailable"
				if isTimeout(err) {
					status, msg = http.StatusGatewayTimeout, service+" timed out"
				}

				l.Error().Err(err).Str("path", r.URL.Path).Msg("proxy request failed")
				gctx.JSON(status, web.ErrorMsg(msg))
			},
		}

		rp.ServeHTTP(gctx.Writer, gctx.Request.WithContext(ctx))
	}
}

func rewritePath(out, target *url.URL, escapedPath string) {
	raw := target.EscapedPath() + apiPrefix + escapedPath

	path, err := url.PathUnescape(raw)
	if err != nil {
		path = raw
	}

	out.Path = path
	out.RawPath = raw
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error

	return errors.As(err, &ne) && ne.Timeout()
}
