package carriers

import "strings"

const (
	// recipientAnchor heads the right-hand (recipient) column
	recipientAnchor = "Đến:"

	// senderAnchor heads the left-hand (sender) column
	senderAnchor = "Từ:"

	// senderLineWindow is how far below the sender anchor's bottom edge a
	// token's top may sit and still belong to the line under the anchor
	senderLineWindow = 20.0
)

// ExtractShopName locates the seller name on two-column Shopee labels.
//
// The sender block ("Từ:") sits on the left and the recipient block ("Đến:")
// on the right. The shop name is the first line under the sender anchor,
// restricted to tokens left of the recipient column. Collection stops at the
// first token past the column boundary once at least one token was taken.
// UnknownShop is returned when an anchor is missing or nothing was collected.
func ExtractShopName(words []Word) string {
	recipient, ok := findAnchorWord(words, recipientAnchor)
	if !ok {
		return UnknownShop
	}
	sender, ok := findAnchorWord(words, senderAnchor)
	if !ok {
		return UnknownShop
	}
	denX0 := recipient.X0
	tuY1 := sender.Bottom

	var shopWords []string
	for _, w := range words {
		if !(w.Top > tuY1 && w.Top < tuY1+senderLineWindow) {
			continue
		}
		if w.X0 < denX0 {
			shopWords = append(shopWords, w.Text)
		} else if len(shopWords) > 0 {
			break
		}
	}

	name := strings.TrimSpace(strings.Join(shopWords, " "))
	if name == "" {
		return UnknownShop
	}
	return name
}

// findAnchorWord returns the first token whose text contains marker
func findAnchorWord(words []Word, marker string) (Word, bool) {
	for _, w := range words {
		if strings.Contains(w.Text, marker) {
			return w, true
		}
	}
	return Word{}, false
}
