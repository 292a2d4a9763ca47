package alerts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
)

// Factory builds a notifier for one destination URL.
type Factory func(url string) Notifier

// Registry maps notifier kinds (discord, slack, webhook) to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty notifier registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Settings configures the built-in notifier kinds.
type Settings struct {
	Username      string
	SlackChannel  string
	WebhookSecret string
}

// NewDefaultRegistry registers the discord, slack and webhook kinds, all
// sharing one HTTP client.
func NewDefaultRegistry(client *retryablehttp.Client, s Settings) *Registry {
	r := NewRegistry()
	_ = r.Register("discord", func(url string) Notifier {
		return NewDiscordNotifier(url, s.Username, client)
	})
	_ = r.Register("slack", func(url string) Notifier {
		return NewSlackNotifier(url, s.SlackChannel, client)
	})
	_ = r.Register("webhook", func(url string) Notifier {
		return NewWebhookNotifier(url, s.WebhookSecret, client)
	})
	return r
}

// Register adds a notifier kind to the registry.
func (r *Registry) Register(kind string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("notifier kind %q already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

// New builds a notifier of the given kind for url.
func (r *Registry) New(kind, url string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("notifier kind %q not found", kind)
	}
	return f(url), nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns all registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
