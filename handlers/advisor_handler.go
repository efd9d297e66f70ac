package handlers

import (
	"errors"
	"io"
	"net/http"

	"finwise-backend/models"
	"finwise-backend/service"
	"finwise-backend/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps profile request bodies
const maxBodyBytes = 1 << 20

// AdvisorHandler handles HTTP requests for advice, sentiment and recommendations
type AdvisorHandler struct {
	adviceService         *service.AdviceService
	sentimentService      *service.SentimentService
	recommendationService *service.RecommendationService
	log                   *zap.Logger
}

// NewAdvisorHandler creates a new advisor handler
func NewAdvisorHandler(
	adviceService *service.AdviceService,
	sentimentService *service.SentimentService,
	recommendationService *service.RecommendationService,
	log *zap.Logger,
) *AdvisorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdvisorHandler{
		adviceService:         adviceService,
		sentimentService:      sentimentService,
		recommendationService: recommendationService,
		log:                   log,
	}
}

// RegisterRoutes mounts the advisor endpoints on r
func (h *AdvisorHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/financial_advice/", h.FinancialAdvice)
	r.GET("/market_sentiment/:sector", h.MarketSentiment)
	r.POST("/investment_recommendations/", h.InvestmentRecommendations)
	r.GET("/financial_advice/:profile_id", h.ArchivedAdvice)
}

// FinancialAdvice handles POST /financial_advice/
func (h *AdvisorHandler) FinancialAdvice(c *gin.Context) {
	profile, ok := h.bindProfile(c)
	if !ok {
		return
	}

	result, err := h.adviceService.GenerateAdvice(c.Request.Context(), service.GenerateAdviceRequest{Profile: profile})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"advice": result.Advice,
	})
}

// ArchivedAdvice handles GET /financial_advice/:profile_id
func (h *AdvisorHandler) ArchivedAdvice(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID format")
		return
	}

	rec, err := h.adviceService.ArchivedAdvice(c.Request.Context(), profileID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// MarketSentiment handles GET /market_sentiment/:sector
func (h *AdvisorHandler) MarketSentiment(c *gin.Context) {
	report, err := h.sentimentService.MarketSentiment(c.Request.Context(), service.MarketSentimentRequest{
		Sector: c.Param("sector"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// InvestmentRecommendations handles POST /investment_recommendations/
func (h *AdvisorHandler) InvestmentRecommendations(c *gin.Context) {
	profile, ok := h.bindProfile(c)
	if !ok {
		return
	}

	result, err := h.recommendationService.Recommend(c.Request.Context(), service.RecommendRequest{Profile: profile})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": result.Recommendations,
	})
}

// bindProfile writes the 400 response itself when the body is unusable
func (h *AdvisorHandler) bindProfile(c *gin.Context) (*models.UserFinanceProfile, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return nil, false
	}

	profile, err := validation.DecodeProfile(body)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_FAILED",
					"message": verr.Error(),
					"fields":  verr.Fields,
				},
			})
			return nil, false
		}
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, false
	}
	return profile, true
}

// respondError maps service sentinels onto the error envelope
func (h *AdvisorHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrStorage):
		h.log.Error("storage failure", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Storage is unavailable")
	case errors.Is(err, service.ErrExternalService):
		h.log.Error("external service failure", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", err.Error())
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
