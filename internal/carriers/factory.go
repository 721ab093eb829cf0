package carriers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownRecognizer is returned when a chain names an unregistered recognizer
var ErrUnknownRecognizer = errors.New("unknown recognizer")

// Constructor builds a recognizer instance
type Constructor func() Recognizer

// Registry maps recognizer names to constructors so chains can be assembled
// from configuration
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// DefaultRegistry returns a registry with every built-in recognizer
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("tiktok_jt", func() Recognizer { return NewTikTokJTRecognizer() })
	r.Register("shopee_spx", func() Recognizer { return NewShopeeSPXRecognizer() })
	r.Register("shopee_ghn", func() Recognizer { return NewShopeeGHNRecognizer() })
	return r
}

// DefaultChainNames is the production chain order by registry name
func DefaultChainNames() []string {
	return []string{"tiktok_jt", "shopee_spx", "shopee_ghn"}
}

// Register adds or replaces a recognizer constructor
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[strings.ToLower(name)] = ctor
}

// BuildChain creates a chain from recognizer names in priority order
func (r *Registry) BuildChain(names []string) (*Chain, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("chain must name at least one recognizer")
	}

	seen := make(map[string]bool)
	recognizers := make([]Recognizer, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ctor, ok := r.constructors[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRecognizer, name)
		}
		if seen[key] {
			return nil, fmt.Errorf("recognizer listed twice: %s", name)
		}
		seen[key] = true
		recognizers = append(recognizers, ctor())
	}

	return NewChain(recognizers...), nil
}

// GetAvailableRecognizers returns the registered names, sorted
func (r *Registry) GetAvailableRecognizers() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
