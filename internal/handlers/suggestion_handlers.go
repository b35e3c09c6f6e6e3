package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gavin100305/Auraflix-sub000/internal/common"
	"github.com/gavin100305/Auraflix-sub000/internal/models"
	"github.com/gavin100305/Auraflix-sub000/internal/services"
)

// SuggestionHandlers serves canonical influencer suggestions and the
// analytics dataset proxy.
type SuggestionHandlers struct {
	suggestionSvc services.SuggestionService
	recommender   services.RecommenderClient
}

func NewSuggestionHandlers(suggestionSvc services.SuggestionService, recommender services.RecommenderClient) *SuggestionHandlers {
	return &SuggestionHandlers{
		suggestionSvc: suggestionSvc,
		recommender:   recommender,
	}
}

// SuggestionsResponse wraps the canonical list.
type SuggestionsResponse struct {
	Success              bool                `json:"success"`
	SuggestedInfluencers []models.Influencer `json:"suggestedInfluencers"`
}

// GetSuggestions returns the stored suggestions in canonical form,
// re-persisting the normalized payload on the first raw read.
func (h *SuggestionHandlers) GetSuggestions(c echo.Context) error {
	businessID, ok := common.GetBusinessIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	influencers, err := h.suggestionSvc.GetForBusiness(c.Request().Context(), businessID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching suggestions")
	}

	return c.JSON(http.StatusOK, SuggestionsResponse{
		Success:              true,
		SuggestedInfluencers: influencers,
	})
}

// GetInfluencerByRank proxies the analytics dataset lookup.
func (h *SuggestionHandlers) GetInfluencerByRank(c echo.Context) error {
	rank, err := strconv.Atoi(c.Param("rank"))
	if err != nil || rank <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Rank must be a positive integer")
	}

	influencer, err := h.recommender.FetchInfluencerByRank(c.Request().Context(), rank)
	if err != nil {
		if errors.Is(err, services.ErrUpstreamUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, "Analytics service unavailable")
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	return c.JSON(http.StatusOK, influencer)
}
