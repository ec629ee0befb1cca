package openai

import (
	"encoding/json"
	"strings"

	"github.com/apex/log"

	"menu-translation-service/models"
)

// rawTranslation is the lenient intermediate shape for untrusted model
// output. Fields the model omits or mistypes are repaired field by field in
// toTranslation instead of failing the unmarshal.
type rawTranslation struct {
	Dishes           []rawDish `json:"dishes"`
	SourceLanguage   string    `json:"source_language"`
	Country          string    `json:"country"`
	OriginalCurrency string    `json:"original_currency"`
}

type rawDish struct {
	OriginalName  string          `json:"original_name"`
	EnglishName   string          `json:"english_name"`
	Description   string          `json:"description"`
	Pronunciation string          `json:"pronunciation"`
	Price         json.RawMessage `json:"price"`
}

// currencySymbols repairs the common case of the model reporting a symbol
// instead of an ISO code.
var currencySymbols = map[string]string{
	"€": "EUR",
	"$": "USD",
	"£": "GBP",
	"¥": "JPY",
	"₩": "KRW",
	"₹": "INR",
	"₺": "TRY",
	"฿": "THB",
}

// parseTranslation converts the model's JSON into a MenuTranslation. A dish
// missing either name is dropped and logged; only a menu with no usable
// dishes at all is an error.
func parseTranslation(content, targetCurrency string) (*models.MenuTranslation, error) {
	var raw rawTranslation
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &models.MalformedResponseError{Service: "openai", Payload: content, Err: err}
	}

	dishes := make([]models.Dish, 0, len(raw.Dishes))
	dropped := 0
	for _, rd := range raw.Dishes {
		originalName := strings.TrimSpace(rd.OriginalName)
		englishName := strings.TrimSpace(rd.EnglishName)
		if originalName == "" || englishName == "" {
			dropped++
			log.Warnf("Dropping dish with missing name (original=%q english=%q)", originalName, englishName)
			continue
		}
		dishes = append(dishes, models.Dish{
			OriginalName:      originalName,
			EnglishName:       englishName,
			Description:       strings.TrimSpace(rd.Description),
			Pronunciation:     strings.TrimSpace(rd.Pronunciation),
			OriginalPriceText: priceText(rd.Price),
		})
	}

	if len(dishes) == 0 {
		return nil, models.ErrEmptyMenu
	}
	if dropped > 0 {
		log.Warnf("Dropped %d of %d dishes from model output", dropped, len(raw.Dishes))
	}

	return &models.MenuTranslation{
		Dishes:           dishes,
		SourceLanguage:   normalizeLanguage(raw.SourceLanguage),
		Country:          strings.TrimSpace(raw.Country),
		OriginalCurrency: normalizeCurrency(raw.OriginalCurrency),
		TargetCurrency:   strings.ToUpper(targetCurrency),
	}, nil
}

// priceText accepts the price as either a JSON string or a bare number, the
// two shapes models actually produce.
func priceText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strings.TrimSpace(string(raw))
	}
	return ""
}

func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "unknown"
	}
	return lang
}

func normalizeCurrency(cur string) string {
	cur = strings.TrimSpace(cur)
	if code, ok := currencySymbols[cur]; ok {
		return code
	}
	return strings.ToUpper(cur)
}
