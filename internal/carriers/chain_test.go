package carriers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordRecognizer claims any page containing its keyword
type keywordRecognizer struct {
	name    string
	keyword string
	method  DeliveryMethod
	parsed  int
}

func (k *keywordRecognizer) Name() string           { return k.name }
func (k *keywordRecognizer) Method() DeliveryMethod { return k.method }

func (k *keywordRecognizer) CanHandle(text string, words []Word) bool {
	return strings.Contains(text, k.keyword)
}

func (k *keywordRecognizer) Parse(page *Page) PageResult {
	k.parsed++
	return PageResult{
		PageNumber:        page.Number,
		OrderSN:           k.name + "-order",
		ShopName:          UnknownShop,
		Platform:          PlatformUnknown,
		DeliveryMethod:    k.method,
		DeliveryMethodRaw: k.name,
	}
}

func TestChain_FirstMatchWins(t *testing.T) {
	first := &keywordRecognizer{name: "first", keyword: "LABEL", method: "AAA"}
	second := &keywordRecognizer{name: "second", keyword: "LABEL", method: "BBB"}

	noise := []string{
		"LABEL",
		"xx LABEL yy",
		"LABEL LABEL LABEL",
		"\n\nLABEL\t",
	}

	chain := NewChain(first, second)
	for _, text := range noise {
		result, ok := chain.Dispatch(&Page{Number: 1, Text: text})
		require.True(t, ok)
		assert.Equal(t, DeliveryMethod("AAA"), result.DeliveryMethod)
	}
	assert.Equal(t, len(noise), first.parsed)
	assert.Zero(t, second.parsed)

	reversed := NewChain(second, first)
	result, ok := reversed.Dispatch(&Page{Number: 1, Text: "LABEL"})
	require.True(t, ok)
	assert.Equal(t, DeliveryMethod("BBB"), result.DeliveryMethod)
}

func TestChain_NoMatch(t *testing.T) {
	chain := DefaultChain()

	result, ok := chain.Dispatch(&Page{Number: 9, Text: "Packing slip without any carrier label"})
	assert.False(t, ok)
	assert.Equal(t, PageResult{}, result)
}

func TestChain_IsImmutable(t *testing.T) {
	a := &keywordRecognizer{name: "a", keyword: "A", method: "A"}
	b := &keywordRecognizer{name: "b", keyword: "B", method: "B"}
	input := []Recognizer{a, b}

	chain := NewChain(input...)
	input[0] = b

	got := chain.Recognizers()
	got[1] = a

	assert.Equal(t, "a>b", chain.Signature())
}

// replacementSPX reuses the SPX name but reports a different order id
type replacementSPX struct {
	*ShopeeSPXRecognizer
}

func (r replacementSPX) Parse(page *Page) PageResult {
	result := r.ShopeeSPXRecognizer.Parse(page)
	result.OrderSN = "REPLACED"
	return result
}

// tunedRecognizer is a keyword recognizer that reports a configuration version
type tunedRecognizer struct {
	keywordRecognizer
	version string
}

func (t *tunedRecognizer) Version() string { return t.version }

func TestChain_Fingerprint(t *testing.T) {
	builtIn := NewChain(NewShopeeSPXRecognizer())
	replaced := NewChain(replacementSPX{NewShopeeSPXRecognizer()})

	assert.Equal(t, builtIn.Signature(), replaced.Signature())
	assert.NotEqual(t, builtIn.Fingerprint(), replaced.Fingerprint())
	assert.Equal(t, "shopee_spx(*carriers.ShopeeSPXRecognizer)", builtIn.Fingerprint())
	assert.Equal(t, DefaultChain().Fingerprint(), DefaultChain().Fingerprint())

	v1 := NewChain(&tunedRecognizer{keywordRecognizer: keywordRecognizer{name: "tuned"}, version: "1"})
	v2 := NewChain(&tunedRecognizer{keywordRecognizer: keywordRecognizer{name: "tuned"}, version: "2"})
	assert.Equal(t, "tuned(*carriers.tunedRecognizer)@1", v1.Fingerprint())
	assert.NotEqual(t, v1.Fingerprint(), v2.Fingerprint())
}

func TestDefaultChain(t *testing.T) {
	chain := DefaultChain()

	assert.Equal(t, 3, chain.Len())
	assert.Equal(t, "tiktok_jt>shopee_spx>shopee_ghn", chain.Signature())
	assert.Equal(t, []DeliveryMethod{MethodJT, MethodSPX, MethodGHN}, chain.Methods())
	assert.True(t, chain.Supports(MethodGHN))
	assert.False(t, chain.Supports("VTP"))
}

func TestDefaultChain_Scenarios(t *testing.T) {
	chain := DefaultChain()

	tests := []struct {
		name     string
		page     *Page
		matched  bool
		expected PageResult
	}{
		{
			name: "Shopee SPX",
			page: &Page{
				Number: 1,
				Text:   "Mã vận đơn: SPXVN123456789\nMã đơn hàng: ORDER001",
				Words:  twoColumnWords("Shop", "ABC"),
			},
			matched: true,
			expected: PageResult{
				PageNumber: 1, OrderSN: "ORDER001", ShopName: "Shop ABC",
				Platform: PlatformShopee, DeliveryMethod: MethodSPX, DeliveryMethodRaw: "SPX",
			},
		},
		{
			name:    "Shopee GHN without order code",
			page:    &Page{Number: 2, Text: "Mã vận đơn: GY9988"},
			matched: true,
			expected: PageResult{
				PageNumber: 2, ShopName: UnknownShop,
				Platform: PlatformShopee, DeliveryMethod: MethodGHN, DeliveryMethodRaw: "Giao Hàng Nhanh",
			},
		},
		{
			name:    "TikTok J&T",
			page:    &Page{Number: 3, Text: "Order ID: TT999\nNgười gửi\nMyShop\n123 Nguyen Trai"},
			matched: true,
			expected: PageResult{
				PageNumber: 3, OrderSN: "TT999", ShopName: "MyShop",
				Platform: PlatformTikTok, DeliveryMethod: MethodJT, DeliveryMethodRaw: "J&T Express",
			},
		},
		{
			name:    "TikTok checked before Shopee",
			page:    &Page{Number: 4, Text: "Order ID: TT1\nMã vận đơn: SPXVN1"},
			matched: true,
			expected: PageResult{
				PageNumber: 4, OrderSN: "TT1", ShopName: UnknownShop,
				Platform: PlatformTikTok, DeliveryMethod: MethodJT, DeliveryMethodRaw: "J&T Express",
			},
		},
		{
			name:    "Unknown delivery code prefix",
			page:    &Page{Number: 5, Text: "Mã vận đơn: VTP123"},
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := chain.Dispatch(tt.page)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.expected, result)
				assert.True(t, chain.Supports(result.DeliveryMethod))
			}
		})
	}
}
