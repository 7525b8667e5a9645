package model

// Market names as they appear in the listing table.
const (
	MarketKOSPI  = "유가"
	MarketKOSDAQ = "코스닥"
	MarketKONEX  = "코넥스"
)

// Company is one row of the exchange listing.
type Company struct {
	Name   string `json:"name"`
	Code   string `json:"code"` // always 6 digits
	Market string `json:"market,omitempty"`
}
