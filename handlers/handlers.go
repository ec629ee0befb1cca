package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"menu-translation-service/forex"
	"menu-translation-service/models"
	"menu-translation-service/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	translation *service.TranslationService
	enrichment  *service.EnrichmentService
	forex       *forex.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(translation *service.TranslationService, enrichment *service.EnrichmentService, forexService *forex.Service) *Handlers {
	return &Handlers{
		translation: translation,
		enrichment:  enrichment,
		forex:       forexService,
	}
}

// Status is the health check endpoint.
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TranslateMenu handles POST /api/translate: multipart image upload plus
// optional currency and model form fields. The response never carries image
// URLs; the frontend fetches those separately.
func (h *Handlers) TranslateMenu(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No image file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Could not read image file"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Could not read image file"})
		return
	}

	targetCurrency := c.PostForm("currency")
	model := c.PostForm("model")

	translation, err := h.translation.TranslateMenu(c.Request.Context(), imageData, targetCurrency, model)
	if err != nil {
		status, message := translateErrorResponse(err)
		c.JSON(status, gin.H{"status": "error", "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": translation})
}

// translateErrorResponse maps the error taxonomy onto HTTP statuses.
func translateErrorResponse(err error) (int, string) {
	var validationErr *models.ValidationError
	var upstreamErr *models.UpstreamError
	var malformedErr *models.MalformedResponseError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.Is(err, models.ErrEmptyMenu):
		return http.StatusUnprocessableEntity, "We couldn't find any dishes on this image. Try a clearer photo of the menu."
	case errors.As(err, &malformedErr):
		log.Errorf("Malformed %s response: %v (payload: %s)", malformedErr.Service, malformedErr.Err, malformedErr.Snippet())
		return http.StatusInternalServerError, "Translation failed: the translation service returned an unexpected response"
	case errors.As(err, &upstreamErr):
		log.Errorf("Translation error: %v", err)
		return http.StatusBadGateway, "Translation failed: " + upstreamErr.Service + " is unavailable"
	default:
		log.Errorf("Unexpected error: %v", err)
		return http.StatusInternalServerError, "An unexpected error occurred during translation"
	}
}

// FetchImages handles POST /api/fetch-images. The response is always
// structurally successful: dishes without images map to empty lists.
func (h *Handlers) FetchImages(c *gin.Context) {
	var req models.FetchImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No JSON data provided"})
		return
	}

	language := req.Language
	if language == "" {
		language = "English"
	}

	names := make([]string, 0, len(req.Dishes))
	for _, dish := range req.Dishes {
		names = append(names, dish.Name)
	}

	images := h.enrichment.FetchImages(c.Request.Context(), names, language, req.WantImages())
	c.JSON(http.StatusOK, gin.H{"status": "success", "images": images})
}

// Currencies handles GET /api/currencies.
func (h *Handlers) Currencies(c *gin.Context) {
	currencies, err := h.forex.SupportedCurrencies(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to list currencies: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": "Currency list is unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "currencies": currencies})
}

// ExchangeRate handles GET /api/exchange-rate?from=X&to=Y.
func (h *Handlers) ExchangeRate(c *gin.Context) {
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing 'from' or 'to' currency parameter"})
		return
	}

	if from == to {
		c.JSON(http.StatusOK, gin.H{"status": "success", "rate": 1.0})
		return
	}

	table, err := h.forex.Rates(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to fetch rate table: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": "Exchange rates are unavailable"})
		return
	}

	rate, err := forex.PairRate(from, to, table)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "rate": rate})
}
