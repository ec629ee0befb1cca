package main

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"menu-translation-service/config"
	"menu-translation-service/forex"
	"menu-translation-service/handlers"
	"menu-translation-service/imagesearch"
	"menu-translation-service/openai"
	"menu-translation-service/service"
)

const (
	EndPointStatus       = "/status"
	EndPointTranslate    = "/api/translate"
	EndPointFetchImages  = "/api/fetch-images"
	EndPointCurrencies   = "/api/currencies"
	EndPointExchangeRate = "/api/exchange-rate"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warnf(".env file not found, using system environment variables")
	}

	cfg := config.Load()

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}
	if cfg.BraveAPIKey == "" {
		log.Warnf("BRAVE_API_KEY not set; image enrichment will fail until it is configured")
	}

	log.Info("Starting the menu translation service...")

	visionClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.OpenAITimeout)
	forexService := forex.NewService(cfg.ForexBaseURL, cfg.BaseCurrency, cfg.ForexRateTTL, cfg.ForexTimeout)
	searchClient := imagesearch.NewClient(cfg.BraveAPIKey, cfg.BraveBaseURL, cfg.ImageSearchCount, cfg.BraveTimeout)
	imageCache := imagesearch.NewCache(cfg.ImageCacheTTL)

	translationService := service.NewTranslationService(visionClient, forexService, cfg.TargetCurrency, cfg.MaxUploadSizeMB)
	enrichmentService := service.NewEnrichmentService(imageCache, searchClient, cfg.MaxConcurrentSearches)

	h := handlers.NewHandlers(translationService, enrichmentService, forexService)

	router := gin.Default()
	router.Use(handlers.CORS())
	router.Use(handlers.RequestLogger())

	router.GET(EndPointStatus, h.Status)
	router.POST(EndPointTranslate, h.TranslateMenu)
	router.POST(EndPointFetchImages, h.FetchImages)
	router.GET(EndPointCurrencies, h.Currencies)
	router.GET(EndPointExchangeRate, h.ExchangeRate)

	log.Infof("Menu translation service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
