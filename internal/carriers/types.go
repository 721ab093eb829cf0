package carriers

// Platform identifies the marketplace a shipping label was issued for
type Platform string

const (
	PlatformShopee  Platform = "shopee"
	PlatformTikTok  Platform = "tiktok"
	PlatformLazada  Platform = "lazada"
	PlatformUnknown Platform = "unknown"
)

// DeliveryMethod is the normalized carrier code printed on every recognized row
type DeliveryMethod string

const (
	MethodSPX DeliveryMethod = "SPX"
	MethodGHN DeliveryMethod = "GHN"
	MethodJT  DeliveryMethod = "JT"
)

// UnknownShop is returned whenever the sender name cannot be located
const UnknownShop = "UNKNOWN_SHOP"

// Word is a positioned text token on a page. Coordinates use a top-left
// origin in PDF points: X0 is the left edge, Top and Bottom the vertical bounds.
type Word struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Page is everything a recognizer may look at for a single page
type Page struct {
	// Number is the 1-based page index in the source document
	Number int

	// Text is the extracted page text with layout spacing preserved
	Text string

	// Words are the positioned tokens in stable reading order
	Words []Word

	// Width and Height are the page dimensions in points (0 when unknown)
	Width  float64
	Height float64
}

// PageResult is the metadata extracted from one recognized page
type PageResult struct {
	PageNumber        int            `json:"page_number"`
	OrderSN           string         `json:"order_sn,omitempty"`
	ShopName          string         `json:"shop_name"`
	Platform          Platform       `json:"platform"`
	DeliveryMethod    DeliveryMethod `json:"delivery_method"`
	DeliveryMethodRaw string         `json:"delivery_method_raw"`
}

// HasOrderSN reports whether the recognizer located an order identifier
func (r PageResult) HasOrderSN() bool {
	return r.OrderSN != ""
}

// Recognizer decides whether it owns a page and extracts its fields.
// Implementations must be stateless so a single instance can serve
// concurrent scans.
type Recognizer interface {
	// Name returns the stable registry name (e.g. "shopee_spx")
	Name() string

	// Method returns the normalized code every result of this recognizer carries
	Method() DeliveryMethod

	// CanHandle is a cheap keyword/regex test; it must not do geometric work
	CanHandle(text string, words []Word) bool

	// Parse extracts the page fields. It is only called after CanHandle
	// returned true and never fails: a missing order identifier is reported
	// as an empty OrderSN.
	Parse(page *Page) PageResult
}
