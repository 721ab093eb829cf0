package carriers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// twoColumnWords lays out a Shopee label header: "Từ:" and "Đến:" on one
// line, the shop name under the sender anchor and the recipient under "Đến:"
func twoColumnWords(shop ...string) []Word {
	words := []Word{
		{Text: "Từ:", X0: 10, Top: 100, Bottom: 110},
		{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
	}
	x := 10.0
	for _, s := range shop {
		words = append(words, Word{Text: s, X0: x, Top: 115, Bottom: 125})
		x += 40
	}
	words = append(words,
		Word{Text: "Nguyen", X0: 200, Top: 115, Bottom: 125},
		Word{Text: "Van", X0: 240, Top: 115, Bottom: 125},
	)
	return words
}

func TestExtractShopName(t *testing.T) {
	tests := []struct {
		name     string
		words    []Word
		expected string
	}{
		{
			name:     "Shop name left of recipient column",
			words:    twoColumnWords("Shop", "ABC"),
			expected: "Shop ABC",
		},
		{
			name: "Missing recipient anchor",
			words: []Word{
				{Text: "Từ:", X0: 10, Top: 100, Bottom: 110},
				{Text: "Shop", X0: 10, Top: 115, Bottom: 125},
			},
			expected: UnknownShop,
		},
		{
			name: "Missing sender anchor",
			words: []Word{
				{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
				{Text: "Shop", X0: 10, Top: 115, Bottom: 125},
			},
			expected: UnknownShop,
		},
		{
			name:     "Anchors present but nothing in the window",
			words:    twoColumnWords()[:2],
			expected: UnknownShop,
		},
		{
			name: "Tokens below the window are ignored",
			words: []Word{
				{Text: "Từ:", X0: 10, Top: 100, Bottom: 110},
				{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
				{Text: "Far", X0: 10, Top: 130, Bottom: 140},
			},
			expected: UnknownShop,
		},
		{
			name: "Window bounds are exclusive",
			words: []Word{
				{Text: "Từ:", X0: 10, Top: 100, Bottom: 110},
				{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
				{Text: "Edge", X0: 10, Top: 110, Bottom: 120},
				{Text: "Limit", X0: 50, Top: 130, Bottom: 140},
			},
			expected: UnknownShop,
		},
		{
			name: "Anchor matched inside a longer token",
			words: []Word{
				{Text: "Từ:NguoiBan", X0: 10, Top: 100, Bottom: 110},
				{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
				{Text: "Tiem", X0: 10, Top: 112, Bottom: 122},
				{Text: "Nho", X0: 40, Top: 112, Bottom: 122},
			},
			expected: "Tiem Nho",
		},
		{
			name: "Stops after crossing the column boundary",
			words: []Word{
				{Text: "Từ:", X0: 10, Top: 100, Bottom: 110},
				{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
				{Text: "Shop", X0: 10, Top: 115, Bottom: 125},
				{Text: "Recipient", X0: 210, Top: 115, Bottom: 125},
				{Text: "Late", X0: 60, Top: 115, Bottom: 125},
			},
			expected: "Shop",
		},
		{
			name: "Right column tokens before any collection are skipped",
			words: []Word{
				{Text: "Từ:", X0: 10, Top: 100, Bottom: 110},
				{Text: "Đến:", X0: 200, Top: 100, Bottom: 110},
				{Text: "Recipient", X0: 210, Top: 115, Bottom: 125},
				{Text: "Shop", X0: 10, Top: 115, Bottom: 125},
				{Text: "XYZ", X0: 50, Top: 115, Bottom: 125},
			},
			expected: "Shop XYZ",
		},
		{
			name:     "No tokens",
			words:    nil,
			expected: UnknownShop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractShopName(tt.words))
		})
	}
}
