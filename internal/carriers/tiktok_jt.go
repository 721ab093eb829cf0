package carriers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// jtRaw is the carrier name printed for every J&T row
const jtRaw = "J&T Express"

// TikTokJTRecognizer handles TikTok Shop labels shipped by J&T Express.
// These labels have no Shopee delivery code; they are identified by the
// "Order ID:" line instead.
type TikTokJTRecognizer struct{}

// NewTikTokJTRecognizer creates a new TikTok J&T recognizer
func NewTikTokJTRecognizer() *TikTokJTRecognizer {
	return &TikTokJTRecognizer{}
}

func (r *TikTokJTRecognizer) Name() string {
	return "tiktok_jt"
}

func (r *TikTokJTRecognizer) Method() DeliveryMethod {
	return MethodJT
}

func (r *TikTokJTRecognizer) CanHandle(text string, words []Word) bool {
	_, ok := tiktokOrderID.FindValue(text)
	return ok
}

func (r *TikTokJTRecognizer) Parse(page *Page) PageResult {
	orderSN, _ := tiktokOrderID.FindValue(page.Text)

	return PageResult{
		PageNumber:        page.Number,
		OrderSN:           orderSN,
		ShopName:          extractSenderName(page.Text),
		Platform:          PlatformTikTok,
		DeliveryMethod:    MethodJT,
		DeliveryMethodRaw: jtRaw,
	}
}

// extractSenderName reads the shop name that follows the "Người gửi" label.
//
// The capture runs from the first non-space character after the label to the
// end of that line, cut short at the first address keyword or digit (the name
// always keeps its first character). Words are then taken left to right until
// one that is at least half digits, which is treated as the start of a street
// address. If every word was dropped the raw capture is returned.
func extractSenderName(text string) string {
	loc := tiktokSenderLabel.Regex.FindStringIndex(text)
	if loc == nil {
		return UnknownShop
	}

	line := text[loc[1]:]
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	if line == "" {
		return UnknownShop
	}

	_, first := utf8.DecodeRuneInString(line)
	if m := addressStart.Regex.FindStringIndex(line[first:]); m != nil {
		line = line[:first+m[0]]
	}
	raw := strings.TrimSpace(line)

	var kept []string
	for _, part := range strings.Fields(raw) {
		if digitRatio(part) >= 0.5 {
			break
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return raw
	}
	return strings.Join(kept, " ")
}

// digitRatio returns the share of runes in s that are digits
func digitRatio(s string) float64 {
	total, digits := 0, 0
	for _, r := range s {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
