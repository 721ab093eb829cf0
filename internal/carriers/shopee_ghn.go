package carriers

// ghnRaw is the carrier name printed for every GHN row
const ghnRaw = "Giao Hàng Nhanh"

// ShopeeGHNRecognizer handles Shopee labels shipped by Giao Hàng Nhanh.
// GHN delivery codes start with "GY".
type ShopeeGHNRecognizer struct{}

// NewShopeeGHNRecognizer creates a new GHN recognizer
func NewShopeeGHNRecognizer() *ShopeeGHNRecognizer {
	return &ShopeeGHNRecognizer{}
}

func (r *ShopeeGHNRecognizer) Name() string {
	return "shopee_ghn"
}

func (r *ShopeeGHNRecognizer) Method() DeliveryMethod {
	return MethodGHN
}

func (r *ShopeeGHNRecognizer) CanHandle(text string, words []Word) bool {
	return hasDeliveryCodePrefix(text, "GY")
}

func (r *ShopeeGHNRecognizer) Parse(page *Page) PageResult {
	orderSN, _ := shopeeOrderCode.FindValue(page.Text)

	return PageResult{
		PageNumber:        page.Number,
		OrderSN:           orderSN,
		ShopName:          ExtractShopName(page.Words),
		Platform:          PlatformShopee,
		DeliveryMethod:    MethodGHN,
		DeliveryMethodRaw: ghnRaw,
	}
}
