package proof

import (
	"fmt"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// Registry holds the closed set of provider adapters. Adding a provider
// means adding an adapter here, never a new conditional inside the pipeline.
type Registry struct {
	parsers map[domain.Provider]Parser
}

// NewRegistry builds the registry with every supported adapter.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[domain.Provider]Parser)}
	r.register(NewAthleticNetParser())
	r.register(NewMileSplitParser())
	return r
}

func (r *Registry) register(p Parser) {
	r.parsers[p.Provider()] = p
}

// ForLink returns the adapter owning the given result link, or
// ErrUnsupportedURL for links outside the closed set.
func (r *Registry) ForLink(rawURL string) (Parser, error) {
	provider, err := ProviderForLink(rawURL)
	if err != nil {
		return nil, err
	}

	p, ok := r.parsers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter for provider %s", ErrUnsupportedURL, provider)
	}
	return p, nil
}
