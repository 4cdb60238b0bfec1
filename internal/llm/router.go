package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Router dispatches requests to named providers. An empty selector resolves to the
// default provider.
type Router struct {
	mu          sync.RWMutex
	providers   map[string]Client
	defaultName string
}

func NewRouter(defaultName string) *Router {
	return &Router{
		providers:   make(map[string]Client),
		defaultName: normalizeName(defaultName),
	}
}

// Register adds or replaces a provider. The first registered provider becomes the
// default when none was configured.
func (r *Router) Register(name string, client Client) {
	key := normalizeName(name)
	if key == "" || client == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[key] = client
	if r.defaultName == "" {
		r.defaultName = key
	}
}

// Resolve returns the provider for selector together with its canonical name.
func (r *Router) Resolve(selector string) (Client, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeName(selector)
	if key == "" {
		key = r.defaultName
	}
	client, ok := r.providers[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownProvider, selector)
	}
	return client, key, nil
}

// Complete resolves selector and sends req to it.
func (r *Router) Complete(ctx context.Context, selector string, req Request) (Response, error) {
	client, name, err := r.Resolve(selector)
	if err != nil {
		return Response{}, err
	}
	resp, err := client.Complete(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", name, err)
	}
	// the routing key identifies the provider, whatever the client calls itself.
	resp.Provider = name
	return resp, nil
}

// Names lists registered providers in sorted order.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Router) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
