package models

// Dish is one translated menu entry. ImageURLs stays nil until the client
// asks for enrichment through /api/fetch-images.
type Dish struct {
	OriginalName      string   `json:"original_name"`
	EnglishName       string   `json:"english_name"`
	Description       string   `json:"description"`
	Pronunciation     string   `json:"pronunciation,omitempty"`
	ImageURLs         []string `json:"image_urls"`
	OriginalPriceText string   `json:"original_price_text,omitempty"`
	ConvertedPrice    *float64 `json:"converted_price,omitempty"`
}

// MenuTranslation is the result of translating one menu photo.
type MenuTranslation struct {
	Dishes            []Dish   `json:"dishes"`
	SourceLanguage    string   `json:"source_language"`
	Country           string   `json:"country,omitempty"`
	OriginalCurrency  string   `json:"original_currency,omitempty"`
	ExchangeRateToEUR *float64 `json:"exchange_rate_to_eur,omitempty"`
	TargetCurrency    string   `json:"target_currency"`
}

// FetchImagesRequest is the body of POST /api/fetch-images.
type FetchImagesRequest struct {
	Dishes        []DishRef `json:"dishes"`
	Language      string    `json:"language"`
	IncludeImages *bool     `json:"include_images"`
}

// DishRef names a dish to enrich. Only the name matters; extra fields the
// frontend echoes back are ignored.
type DishRef struct {
	Name string `json:"name"`
}

// WantImages defaults to true when the flag is omitted.
func (r *FetchImagesRequest) WantImages() bool {
	return r.IncludeImages == nil || *r.IncludeImages
}

// CurrencyInfo is one entry of GET /api/currencies.
type CurrencyInfo struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Emoji  string `json:"emoji"`
}
