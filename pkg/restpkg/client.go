// Package restpkg provides a JSON client for calls between services.
package restpkg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-petr/pet-roulette/pkg/discoverypkg"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/go-petr/pet-roulette/pkg/web"
)

const maxBodySize = 1 << 20

// Options configure a Client.
type Options struct {
	Timeout time.Duration
	// RequestID returns the correlation id to forward, if any.
	RequestID func(ctx context.Context) string
	// Transport replaces the default round tripper, mostly in tests.
	Transport http.RoundTripper
}

// Client calls the JSON API of one service resolved by name.
type Client struct {
	resolver  discoverypkg.Resolver
	service   string
	http      *http.Client
	requestID func(ctx context.Context) string
}

// NewClient returns a client of the named service.
func NewClient(resolver discoverypkg.Resolver, service string, opts Options) *Client {
	return &Client{
		resolver:  resolver,
		service:   service,
		http:      &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		requestID: opts.RequestID,
	}
}

// Do sends in as JSON to path and decodes the data of a successful envelope into out.
//
// It returns the response status code. Failures are typed: a response outside
// 2xx is NotFound (404), Conflict (409) or Upstream carrying the origin status
// and body; a request that never got an answer is Timeout or Transport.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) (int, error) {
	base, err := c.resolver.Resolve(ctx, c.service)
	if err != nil {
		return 0, errorspkg.Wrap(errorspkg.KindInternal, "resolve "+c.service, err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, errorspkg.Wrap(errorspkg.KindInternal, "encode request", err)
		}

		body = bytes.NewReader(b)
	}

	target := strings.TrimRight(base.String(), "/") + path

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, errorspkg.Wrap(errorspkg.KindInternal, "build request", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.requestID != nil {
		if id := c.requestID(ctx); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, c.transportError(method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return res.StatusCode, c.transportError(method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, c.statusError(res.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return res.StatusCode, nil
	}

	envelope := web.Response{Data: out}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return res.StatusCode, errorspkg.Wrap(errorspkg.KindUpstream,
			fmt.Sprintf("%s returned an unreadable body", c.service), err)
	}

	return res.StatusCode, nil
}

func (c *Client) transportError(method, path string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errorspkg.Wrap(errorspkg.KindTimeout,
			fmt.Sprintf("%s %s %s timed out", c.service, method, path), err)
	}

	return errorspkg.Wrap(errorspkg.KindTransport,
		fmt.Sprintf("%s %s %s failed", c.service, method, path), err)
}

func (c *Client) statusError(status int, raw []byte) error {
	msg := fmt.Sprintf("%s responded with status %d", c.service, status)

	var envelope web.Response
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		msg = envelope.Error
	}

	e := errorspkg.Upstream(status, raw, msg)

	switch status {
	case http.StatusNotFound:
		e.Kind = errorspkg.KindNotFound
	case http.StatusConflict:
		e.Kind = errorspkg.KindConflict
	}

	return e
}
