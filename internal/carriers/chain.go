package carriers

import (
	"fmt"
	"strings"
)

// Chain is an ordered, immutable list of recognizers. The first recognizer
// whose CanHandle accepts a page parses it. Narrow, carrier-specific
// signatures must come before broader ones.
type Chain struct {
	recognizers []Recognizer
}

// NewChain creates a chain that tries recognizers in the given order
func NewChain(recognizers ...Recognizer) *Chain {
	rs := make([]Recognizer, len(recognizers))
	copy(rs, recognizers)
	return &Chain{recognizers: rs}
}

// DefaultChain returns the production priority order.
// TikTok J&T goes first: its pages carry no Shopee delivery code, and broader
// recognizers added later must not shadow it.
func DefaultChain() *Chain {
	return NewChain(
		NewTikTokJTRecognizer(),
		NewShopeeSPXRecognizer(),
		NewShopeeGHNRecognizer(),
	)
}

// Dispatch runs the page through the chain. The boolean is false when no
// recognizer claimed the page.
func (c *Chain) Dispatch(page *Page) (PageResult, bool) {
	for _, r := range c.recognizers {
		if r.CanHandle(page.Text, page.Words) {
			return r.Parse(page), true
		}
	}
	return PageResult{}, false
}

// Recognizers returns a copy of the chain in priority order
func (c *Chain) Recognizers() []Recognizer {
	rs := make([]Recognizer, len(c.recognizers))
	copy(rs, c.recognizers)
	return rs
}

// Len returns the number of recognizers in the chain
func (c *Chain) Len() int {
	return len(c.recognizers)
}

// Methods returns the normalized codes the chain can emit, in chain order
// without duplicates
func (c *Chain) Methods() []DeliveryMethod {
	seen := make(map[DeliveryMethod]bool)
	var methods []DeliveryMethod
	for _, r := range c.recognizers {
		m := r.Method()
		if !seen[m] {
			seen[m] = true
			methods = append(methods, m)
		}
	}
	return methods
}

// Supports reports whether method is one of the chain's normalized codes
func (c *Chain) Supports(method DeliveryMethod) bool {
	for _, r := range c.recognizers {
		if r.Method() == method {
			return true
		}
	}
	return false
}

// Signature identifies the chain composition and order, e.g.
// "tiktok_jt>shopee_spx>shopee_ghn". Two chains with the same signature
// classify identical pages identically.
func (c *Chain) Signature() string {
	names := make([]string, len(c.recognizers))
	for i, r := range c.recognizers {
		names[i] = r.Name()
	}
	return strings.Join(names, ">")
}

// Fingerprint identifies what the chain does, not only its order. Each
// position carries the recognizer's name, concrete type and, when it has one,
// its Version(), so a replacement registered under an existing name produces
// a different fingerprint.
func (c *Chain) Fingerprint() string {
	parts := make([]string, len(c.recognizers))
	for i, r := range c.recognizers {
		part := fmt.Sprintf("%s(%T)", r.Name(), r)
		if v, ok := r.(Versioned); ok {
			part += "@" + v.Version()
		}
		parts[i] = part
	}
	return strings.Join(parts, ">")
}
