package rates

import "time"

const (
	// LatestDataset is the feed dataset holding today's rates
	LatestDataset = "latest"
	// DateLayout formats historical dataset identifiers
	DateLayout = "2006-01-02"
)

// CacheEntry is what the rate cache stores. Freshness is decided by the
// reader from FetchedAt.
type CacheEntry struct {
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Conversion is the result of converting an amount
type Conversion struct {
	Amount          float64 `json:"amount"`
	From            string  `json:"from"`
	ConvertedAmount float64 `json:"converted_amount"`
	To              string  `json:"to"`
	Rate            float64 `json:"rate"`
	// Converted is false when no rate was available and ConvertedAmount
	// holds the original amount
	Converted bool `json:"converted"`
}

// RateResponse is the API response for a single rate
type RateResponse struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// BatchRatesResponse is the API response for several base currencies
type BatchRatesResponse struct {
	To    string             `json:"to"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
	// Missing lists requested currencies whose rate could not be obtained
	Missing []string `json:"missing,omitempty"`
}

// RateQuery is bound from GET /rates query parameters
type RateQuery struct {
	From string `form:"from" binding:"required,currency"`
	To   string `form:"to" binding:"required,currency"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// BatchQuery is bound from GET /rates/batch query parameters
type BatchQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required,currency"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConvertRequest is the API request for conversion
type ConvertRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	From   string  `json:"from" binding:"required,currency"`
	To     string  `json:"to" binding:"required,currency"`
	Date   string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConvertResponse is the API response for conversion
type ConvertResponse struct {
	Conversion
	FormattedAmount    string `json:"formatted_amount"`
	FormattedConverted string `json:"formatted_converted"`
}
