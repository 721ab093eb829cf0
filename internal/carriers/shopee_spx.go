package carriers

import "strings"

// ShopeeSPXRecognizer handles Shopee labels shipped by SPX (Shopee Express).
// A page belongs to SPX when its delivery code starts with "SPX".
type ShopeeSPXRecognizer struct{}

// NewShopeeSPXRecognizer creates a new SPX recognizer
func NewShopeeSPXRecognizer() *ShopeeSPXRecognizer {
	return &ShopeeSPXRecognizer{}
}

// Name returns the registry name
func (r *ShopeeSPXRecognizer) Name() string {
	return "shopee_spx"
}

// Method returns the normalized carrier code
func (r *ShopeeSPXRecognizer) Method() DeliveryMethod {
	return MethodSPX
}

// CanHandle checks the delivery code prefix
func (r *ShopeeSPXRecognizer) CanHandle(text string, words []Word) bool {
	return hasDeliveryCodePrefix(text, "SPX")
}

// Parse extracts order code, shop name and the SPX service tier
func (r *ShopeeSPXRecognizer) Parse(page *Page) PageResult {
	orderSN, _ := shopeeOrderCode.FindValue(page.Text)

	return PageResult{
		PageNumber:        page.Number,
		OrderSN:           orderSN,
		ShopName:          ExtractShopName(page.Words),
		Platform:          PlatformShopee,
		DeliveryMethod:    MethodSPX,
		DeliveryMethodRaw: spxVariant(page.Text),
	}
}

// spxVariant distinguishes SPX Instant from SPX Express using page keywords
func spxVariant(text string) string {
	upper := strings.ToUpper(text)
	for _, variant := range spxVariants {
		if variant.Matches(upper) {
			return variant.Raw
		}
	}
	return spxGenericRaw
}

// hasDeliveryCodePrefix reports whether the Shopee delivery code on the page
// starts with prefix (case-insensitive)
func hasDeliveryCodePrefix(text, prefix string) bool {
	code, ok := shopeeDeliveryCode.FindValue(text)
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.ToUpper(code), prefix)
}
