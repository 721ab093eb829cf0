package carriers

import (
	"regexp"
	"strings"
)

// PatternEntry represents a regex pattern with metadata
type PatternEntry struct {
	Regex       *regexp.Regexp
	Field       string
	Description string
}

// FindValue returns the first capture group of the pattern in text
func (p *PatternEntry) FindValue(text string) (string, bool) {
	match := p.Regex.FindStringSubmatch(text)
	if len(match) < 2 {
		return "", false
	}
	value := strings.TrimSpace(match[1])
	return value, value != ""
}

// VariantEntry maps page markers to a delivery_method_raw description.
// Markers are compared against the upper-cased page text.
type VariantEntry struct {
	Markers []string
	Raw     string
}

// Matches reports whether any marker occurs in the upper-cased text
func (v VariantEntry) Matches(upperText string) bool {
	for _, marker := range v.Markers {
		if strings.Contains(upperText, marker) {
			return true
		}
	}
	return false
}

// sp matches any whitespace including no-break and other Unicode spaces,
// which label generators emit and RE2's \s does not cover
const (
	sp    = `[\s\p{Zs}]`
	nonSp = `[^\s\p{Zs}]`
)

// Shopee labels print "Mã vận đơn" (delivery code) and "Mã đơn hàng"
// (order code). Diacritics are optional because some label generators
// embed fonts without the combining marks.
var (
	shopeeDeliveryCode = &PatternEntry{
		Regex:       regexp.MustCompile(`(?i)M[ãa]` + sp + `*v[ậâa]n` + sp + `*[đd][ơo]n` + sp + `*:` + sp + `*(` + nonSp + `+)`),
		Field:       "delivery_code",
		Description: "Shopee delivery code label (Mã vận đơn)",
	}
	shopeeOrderCode = &PatternEntry{
		Regex:       regexp.MustCompile(`(?i)M[ãa]` + sp + `*[đd][ơo]n` + sp + `*h[àa]ng` + sp + `*:` + sp + `*(` + nonSp + `+)`),
		Field:       "order_sn",
		Description: "Shopee order code label (Mã đơn hàng)",
	}
)

// spxVariants is checked in order; the first match wins
var spxVariants = []VariantEntry{
	{Markers: []string{"INSTANT", "TỨC THÌ"}, Raw: "SPX Instant"},
	{Markers: []string{"NHANH", "EXPRESS"}, Raw: "SPX Express"},
}

const spxGenericRaw = "SPX"

// TikTok Shop labels carry an "Order ID:" line and a "Người gửi" (sender) block
var (
	tiktokOrderID = &PatternEntry{
		Regex:       regexp.MustCompile(`(?i)Order` + sp + `*ID` + sp + `*:` + sp + `*(` + nonSp + `+)`),
		Field:       "order_sn",
		Description: "TikTok order id label",
	}
	tiktokSenderLabel = &PatternEntry{
		Regex:       regexp.MustCompile(`(?i)Người` + sp + `+gửi` + sp + `*`),
		Field:       "shop_name",
		Description: "TikTok sender block label (Người gửi)",
	}
	// addressStart marks where the sender name ends and the address begins
	addressStart = &PatternEntry{
		Regex:       regexp.MustCompile(`(?i)Căn|Số|Phường|Xã|Quận|Huyện|Thành` + sp + `*phố|[0-9]`),
		Field:       "address",
		Description: "Vietnamese address keywords or a digit",
	}
)

// GetAllPatterns returns all patterns for debugging/testing
func GetAllPatterns() map[string][]*PatternEntry {
	return map[string][]*PatternEntry{
		"shopee": {shopeeDeliveryCode, shopeeOrderCode},
		"tiktok": {tiktokOrderID, tiktokSenderLabel, addressStart},
	}
}
