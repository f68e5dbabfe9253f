// Package discoverypkg resolves logical service names to base URLs.
package discoverypkg

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Logical names of the services that talk to each other.
const (
	BalanceService = "balance-service"
	DepositService = "deposit-service"
	Gateway        = "api-gateway"
)

// Resolver returns the base URL of a service.
type Resolver interface {
	Resolve(ctx context.Context, service string) (*url.URL, error)
}

// Static resolves services from a fixed table built from configuration.
type Static struct {
	urls map[string]*url.URL
}

// NewStatic parses the given name to URL table.
func NewStatic(table map[string]string) (*Static, error) {
	s := &Static{urls: make(map[string]*url.URL, len(table))}

	for name, raw := range table {
		if raw == "" {
			continue
		}

		u, err := url.Parse(strings.TrimRight(raw, "/"))
		if err != nil {
			return nil, fmt.Errorf("parse %s url %q: %w", name, raw, err)
		}

		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s url %q must be absolute", name, raw)
		}

		s.urls[name] = u
	}

	return s, nil
}

// Resolve implements Resolver.
func (s *Static) Resolve(_ context.Context, service string) (*url.URL, error) {
	u, ok := s.urls[service]
	if !ok {
		return nil, fmt.Errorf("service %q is not configured", service)
	}

	clone := *u

	return &clone, nil
}
