package models

import "time"

// Quote is a point-in-time snapshot. Nil fields were not reported upstream.
type Quote struct {
	Symbol     string   `json:"symbol"`
	Price      *float64 `json:"price,omitempty"`
	MarketCap  *float64 `json:"market_cap,omitempty"`
	TrailingPE *float64 `json:"trailing_pe,omitempty"`
	EPS        *float64 `json:"eps,omitempty"`
	Sector     *string  `json:"sector,omitempty"`
}

// Bar is one daily closing price.
type Bar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
