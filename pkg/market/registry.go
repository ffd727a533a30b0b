package market

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownToken = errors.New("unknown token")

// Pair is a spot listing and the perp on the same underlying.
type Pair struct {
	Name string `json:"name"`
	Spot Token  `json:"spot"`
	Perp Token  `json:"perp"`
}

// Registry manages listings in a thread-safe manner
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]Token // kind:name -> token
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[string]Token),
	}
}

// Register adds a token to the registry
// Returns error if a token of the same kind and name already exists
func (r *Registry) Register(t Token) error {
	if t.Name == "" {
		return fmt.Errorf("cannot register token without a name")
	}
	if t.SzDecimals < 0 {
		return fmt.Errorf("token %s: negative szDecimals %d", t.Name, t.SzDecimals)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[t.key()]; exists {
		return fmt.Errorf("%s token %s already registered", t.Kind, t.Name)
	}

	r.tokens[t.key()] = t
	return nil
}

// Get retrieves a token by kind and name
func (r *Registry) Get(kind Kind, name string) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tokens[Token{Kind: kind, Name: name}.key()]
	if !exists {
		return Token{}, fmt.Errorf("%w: %s %s", ErrUnknownToken, kind, name)
	}
	return t, nil
}

// BySymbol finds a token by its exchange coin name. Balances come back keyed
// by symbol, so this is how spot holdings are matched to listings.
func (r *Registry) BySymbol(kind Kind, symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tokens {
		if t.Kind == kind && t.Symbol == symbol {
			return t, true
		}
	}
	return Token{}, false
}

// Lookup resolves a pair name ("ETH") or an exchange coin name ("UETH").
func (r *Registry) Lookup(kind Kind, nameOrSymbol string) (Token, error) {
	t, err := r.Get(kind, nameOrSymbol)
	if err == nil {
		return t, nil
	}
	if t, ok := r.BySymbol(kind, nameOrSymbol); ok {
		return t, nil
	}
	return Token{}, err
}

// List returns all tokens ordered by name, perp before spot.
func (r *Registry) List() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Pairs returns every name listed as both spot and perp, ordered by name.
func (r *Registry) Pairs() []Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pairs []Pair
	for _, t := range r.tokens {
		if t.Kind != Spot {
			continue
		}
		perp, ok := r.tokens[Token{Kind: Perp, Name: t.Name}.key()]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Name: t.Name, Spot: t, Perp: perp})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })
	return pairs
}

// Count returns the total number of registered tokens
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
