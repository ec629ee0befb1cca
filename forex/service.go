package forex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/apex/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"menu-translation-service/models"
)

// RateTable maps ISO currency codes to their value relative to the base
// currency (how many units of the code one unit of base buys).
type RateTable map[string]float64

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Service fetches and caches an exchange rate table and converts amounts
// through the base currency. Safe for concurrent use.
type Service struct {
	baseURL      string
	baseCurrency string
	ttl          time.Duration
	httpClient   *http.Client

	mu        sync.Mutex
	table     RateTable
	fetchedAt time.Time
}

// NewService creates a forex service. baseCurrency is the currency all rates
// are expressed against (EUR in production, matching exchange_rate_to_eur).
func NewService(baseURL, baseCurrency string, ttl time.Duration, timeout time.Duration) *Service {
	return &Service{
		baseURL:      strings.TrimRight(baseURL, "/"),
		baseCurrency: strings.ToUpper(baseCurrency),
		ttl:          ttl,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Rates returns the cached rate table, refreshing it when stale. The base
// currency always maps to 1.0.
func (s *Service) Rates(ctx context.Context) (RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table != nil && (s.ttl <= 0 || time.Since(s.fetchedAt) < s.ttl) {
		return s.table, nil
	}

	table, err := s.fetch(ctx)
	if err != nil {
		if s.table != nil {
			// Serve the stale table rather than failing the request.
			log.Warnf("Rate refresh failed, serving stale table: %v", err)
			return s.table, nil
		}
		return nil, err
	}

	s.table = table
	s.fetchedAt = time.Now()
	return s.table, nil
}

func (s *Service) fetch(ctx context.Context) (RateTable, error) {
	url := fmt.Sprintf("%s/v4/latest/%s", s.baseURL, s.baseCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Service: "forex", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.UpstreamError{Service: "forex", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamError{
			Service: "forex",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &models.MalformedResponseError{Service: "forex", Payload: string(body), Err: err}
	}
	if len(parsed.Rates) == 0 {
		return nil, &models.MalformedResponseError{
			Service: "forex",
			Payload: string(body),
			Err:     fmt.Errorf("no rates in response"),
		}
	}

	table := RateTable(parsed.Rates)
	table[s.baseCurrency] = 1.0
	log.Infof("Fetched %d exchange rates (base %s)", len(table), s.baseCurrency)
	return table, nil
}

// Convert converts amount from one currency to another through the base
// currency, rounded half-up to 2 decimal places. Returns nil when the source
// or target currency is unknown — the caller skips conversion, it never
// fails the request. Identity conversions return the amount unchanged, with
// no rate lookup and no rounding.
func Convert(amount float64, from, to string, table RateTable) *float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == "" || to == "" {
		return nil
	}
	if from == to {
		return &amount
	}

	fromRate, ok := table[from]
	if !ok || fromRate <= 0 {
		return nil
	}
	toRate, ok := table[to]
	if !ok || toRate <= 0 {
		return nil
	}

	converted, _ := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(fromRate)).
		Mul(decimal.NewFromFloat(toRate)).
		Round(2).
		Float64()
	return &converted
}

// RateToBase returns how many base-currency units one unit of code is worth
// (e.g. EUR per unit for a EUR base). Nil for unknown codes.
func RateToBase(code string, table RateTable) *float64 {
	code = strings.ToUpper(strings.TrimSpace(code))
	rate, ok := table[code]
	if !ok || rate <= 0 {
		return nil
	}
	toBase, _ := decimal.NewFromFloat(1).
		Div(decimal.NewFromFloat(rate)).
		Round(6).
		Float64()
	return &toBase
}

// PairRate returns the rate from one currency to another. Identity pairs
// return 1.0 without touching the table.
func PairRate(from, to string, table RateTable) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return 1.0, nil
	}
	fromRate, ok := table[from]
	if !ok || fromRate <= 0 {
		return 0, fmt.Errorf("currency %s not found in exchange rate data", from)
	}
	toRate, ok := table[to]
	if !ok || toRate <= 0 {
		return 0, fmt.Errorf("currency %s not found in exchange rate data", to)
	}
	rate, _ := decimal.NewFromFloat(toRate).
		Div(decimal.NewFromFloat(fromRate)).
		Round(6).
		Float64()
	return rate, nil
}

var symbolPrinter = message.NewPrinter(language.AmericanEnglish)

// SupportedCurrencies lists the currencies of the cached rate table with
// display symbol and flag emoji, sorted by code.
func (s *Service) SupportedCurrencies(ctx context.Context) ([]models.CurrencyInfo, error) {
	table, err := s.Rates(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	currencies := make([]models.CurrencyInfo, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, models.CurrencyInfo{
			Code:   code,
			Symbol: symbolFor(code),
			Emoji:  flagEmoji(code[:min(2, len(code))]),
		})
	}
	return currencies, nil
}

// symbolFor derives the display symbol for an ISO code via x/text/currency.
// Unknown codes fall back to the code itself.
func symbolFor(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	formatted := symbolPrinter.Sprintf("%v", currency.Symbol(unit.Amount(0)))
	symbol := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.' || r == ',' {
			return -1
		}
		return r
	}, formatted)
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return code
	}
	return symbol
}

// flagEmoji maps a 2-letter country prefix to its regional-indicator pair.
func flagEmoji(prefix string) string {
	if len(prefix) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(prefix) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}
