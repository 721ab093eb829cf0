package carriers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuildChain(t *testing.T) {
	registry := DefaultRegistry()

	chain, err := registry.BuildChain(DefaultChainNames())
	require.NoError(t, err)
	assert.Equal(t, DefaultChain().Signature(), chain.Signature())
}

func TestRegistry_BuildChain_CustomOrder(t *testing.T) {
	registry := DefaultRegistry()

	chain, err := registry.BuildChain([]string{" Shopee_GHN ", "shopee_spx"})
	require.NoError(t, err)
	assert.Equal(t, "shopee_ghn>shopee_spx", chain.Signature())
	assert.Equal(t, []DeliveryMethod{MethodGHN, MethodSPX}, chain.Methods())
}

func TestRegistry_BuildChain_Errors(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		name    string
		names   []string
		unknown bool
	}{
		{"Empty chain", nil, false},
		{"Unknown recognizer", []string{"tiktok_jt", "viettel_post"}, true},
		{"Duplicate recognizer", []string{"shopee_spx", "SHOPEE_SPX"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := registry.BuildChain(tt.names)
			assert.Error(t, err)
			assert.Nil(t, chain)
			assert.Equal(t, tt.unknown, errors.Is(err, ErrUnknownRecognizer))
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.GetAvailableRecognizers())

	registry.Register("Custom", func() Recognizer {
		return &keywordRecognizer{name: "custom", keyword: "CUSTOM", method: "CUS"}
	})
	assert.Equal(t, []string{"custom"}, registry.GetAvailableRecognizers())

	chain, err := registry.BuildChain([]string{"custom"})
	require.NoError(t, err)

	result, ok := chain.Dispatch(&Page{Number: 1, Text: "CUSTOM label"})
	require.True(t, ok)
	assert.Equal(t, DeliveryMethod("CUS"), result.DeliveryMethod)
}

func TestDefaultRegistry_AvailableRecognizers(t *testing.T) {
	assert.Equal(t,
		[]string{"shopee_ghn", "shopee_spx", "tiktok_jt"},
		DefaultRegistry().GetAvailableRecognizers())
}
