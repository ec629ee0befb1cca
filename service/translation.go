package service

import (
	"context"
	"strings"

	"github.com/apex/log"

	"menu-translation-service/forex"
	imgproc "menu-translation-service/image"
	"menu-translation-service/models"
)

// VisionClient extracts and translates a menu photo.
type VisionClient interface {
	TranslateMenuImage(ctx context.Context, imageData []byte, mimeType, targetCurrency, model string) (*models.MenuTranslation, error)
}

// RateSource provides the cached exchange rate table.
type RateSource interface {
	Rates(ctx context.Context) (forex.RateTable, error)
}

// TranslationService is the Stage 1 pipeline: validate the upload, call the
// vision model, convert prices. Image enrichment is deliberately not part of
// this stage; dishes always leave here with ImageURLs nil so Stage 1 latency
// stays bounded by the vision call alone.
type TranslationService struct {
	vision          VisionClient
	rates           RateSource
	defaultCurrency string
	maxUploadMB     int
}

// NewTranslationService wires the Stage 1 pipeline.
func NewTranslationService(vision VisionClient, rates RateSource, defaultCurrency string, maxUploadMB int) *TranslationService {
	return &TranslationService{
		vision:          vision,
		rates:           rates,
		defaultCurrency: strings.ToUpper(defaultCurrency),
		maxUploadMB:     maxUploadMB,
	}
}

// TranslateMenu runs the full Stage 1 pipeline for one uploaded photo.
func (s *TranslationService) TranslateMenu(ctx context.Context, imageData []byte, targetCurrency, model string) (*models.MenuTranslation, error) {
	targetCurrency = strings.ToUpper(strings.TrimSpace(targetCurrency))
	if targetCurrency == "" {
		targetCurrency = s.defaultCurrency
	}

	mimeType, err := imgproc.Validate(imageData, s.maxUploadMB)
	if err != nil {
		return nil, err
	}

	processed, reencoded, err := imgproc.CompressImage(imageData)
	if err != nil {
		return nil, models.NewValidationError("unreadable image: %v", err)
	}
	if reencoded {
		mimeType = "image/jpeg"
	}

	translation, err := s.vision.TranslateMenuImage(ctx, processed, mimeType, targetCurrency, model)
	if err != nil {
		return nil, err
	}

	s.convertPrices(ctx, translation)

	// Enrichment is Stage 2; never return image URLs from this stage.
	for i := range translation.Dishes {
		translation.Dishes[i].ImageURLs = nil
	}

	return translation, nil
}

// convertPrices fills ConvertedPrice and ExchangeRateToEUR when the menu's
// currency is known and differs from the target. Failures degrade to the
// raw price text, never to a failed request.
func (s *TranslationService) convertPrices(ctx context.Context, translation *models.MenuTranslation) {
	from := translation.OriginalCurrency
	to := translation.TargetCurrency
	if from == "" || from == to {
		return
	}

	table, err := s.rates.Rates(ctx)
	if err != nil {
		log.Warnf("Skipping price conversion, rate table unavailable: %v", err)
		return
	}

	converted := 0
	for i := range translation.Dishes {
		dish := &translation.Dishes[i]
		amount, ok := forex.ParseAmount(dish.OriginalPriceText)
		if !ok {
			continue
		}
		if price := forex.Convert(amount, from, to, table); price != nil {
			dish.ConvertedPrice = price
			converted++
		}
	}

	if converted > 0 {
		translation.ExchangeRateToEUR = forex.RateToBase(from, table)
	}
}
