package scanner

import (
	"sort"

	"label-scanner/internal/carriers"
)

// Reason classifies why a page produced no recognized row
type Reason string

const (
	// ReasonNoCarrierMatch means no recognizer claimed the page
	ReasonNoCarrierMatch Reason = "no_carrier_match"

	// ReasonFieldMissing means a recognizer claimed the page but found no order id
	ReasonFieldMissing Reason = "carrier_matched_field_missing"

	// ReasonExtractionFailure means the page text or tokens could not be read
	ReasonExtractionFailure Reason = "page_extraction_failure"
)

// OrderRow is one recognized page with an order identifier
type OrderRow struct {
	Page              int                     `json:"page"`
	OrderSN           string                  `json:"order_sn"`
	ShopName          string                  `json:"shop_name"`
	Platform          carriers.Platform       `json:"platform"`
	DeliveryMethod    carriers.DeliveryMethod `json:"delivery_method"`
	DeliveryMethodRaw string                  `json:"delivery_method_raw"`
}

// Diagnostic describes a page that did not yield an OrderRow.
// DeliveryMethod is nil unless a carrier was identified; OrderSN is always nil.
type Diagnostic struct {
	PageNumber     int     `json:"page_number"`
	DeliveryMethod *string `json:"delivery_method"`
	OrderSN        *string `json:"order_sn"`
	Reason         Reason  `json:"reason"`
	Error          string  `json:"error,omitempty"`
}

// Result is the outcome of scanning one document. Rows and Unrecognized are
// both in ascending page order.
type Result struct {
	ScanID       string       `json:"scan_id"`
	Source       string       `json:"source,omitempty"`
	Pages        int          `json:"pages"`
	Rows         []OrderRow   `json:"rows"`
	Unrecognized []Diagnostic `json:"unrecognized"`
}

// Summary holds per-scan counters
type Summary struct {
	Pages        int                             `json:"pages"`
	Recognized   int                             `json:"recognized"`
	Unrecognized int                             `json:"unrecognized"`
	ByCarrier    map[carriers.DeliveryMethod]int `json:"by_carrier"`
	ByPlatform   map[carriers.Platform]int       `json:"by_platform"`
	ByReason     map[Reason]int                  `json:"by_reason"`
}

// ShopGroup is the set of rows printed for one shop
type ShopGroup struct {
	ShopName string     `json:"shop_name"`
	Rows     []OrderRow `json:"rows"`
}

// OrderSNs returns the order identifiers in page order
func (r *Result) OrderSNs() []string {
	ids := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		ids = append(ids, row.OrderSN)
	}
	return ids
}

// HasExtractionFailures reports whether any page could not be read
func (r *Result) HasExtractionFailures() bool {
	for _, d := range r.Unrecognized {
		if d.Reason == ReasonExtractionFailure {
			return true
		}
	}
	return false
}

// Summary counts rows per carrier and platform and diagnostics per reason
func (r *Result) Summary() Summary {
	s := Summary{
		Pages:        r.Pages,
		Recognized:   len(r.Rows),
		Unrecognized: len(r.Unrecognized),
		ByCarrier:    make(map[carriers.DeliveryMethod]int),
		ByPlatform:   make(map[carriers.Platform]int),
		ByReason:     make(map[Reason]int),
	}
	for _, row := range r.Rows {
		s.ByCarrier[row.DeliveryMethod]++
		s.ByPlatform[row.Platform]++
	}
	for _, d := range r.Unrecognized {
		s.ByReason[d.Reason]++
	}
	return s
}

// GroupByShop groups rows by shop name. Groups are sorted by shop name and
// rows keep their page order inside each group.
func (r *Result) GroupByShop() []ShopGroup {
	index := make(map[string]int)
	var groups []ShopGroup
	for _, row := range r.Rows {
		i, ok := index[row.ShopName]
		if !ok {
			i = len(groups)
			index[row.ShopName] = i
			groups = append(groups, ShopGroup{ShopName: row.ShopName})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].ShopName < groups[b].ShopName
	})
	return groups
}

func newOrderRow(result carriers.PageResult) OrderRow {
	return OrderRow{
		Page:              result.PageNumber,
		OrderSN:           result.OrderSN,
		ShopName:          result.ShopName,
		Platform:          result.Platform,
		DeliveryMethod:    result.DeliveryMethod,
		DeliveryMethodRaw: result.DeliveryMethodRaw,
	}
}

func stringPtr(s string) *string {
	return &s
}
