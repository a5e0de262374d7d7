package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/foodlog/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// FoodLog is the application state the handlers drive
type FoodLog interface {
	LogFood(ctx context.Context, text string) ([]domain.Meal, error)
	RemoveMeal(index int) error
	SelectMeasure(mealIndex, ingredientIndex, measureIndex int) (bool, error)
	SetCustomGrams(mealIndex, ingredientIndex int, grams float64) (bool, error)
	ResetIngredient(mealIndex, ingredientIndex int) (bool, error)
	State() domain.State
	Subscribe() (<-chan domain.State, func())
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	foodLog FoodLog
}

// NewHandler creates a new HTTP handler
func NewHandler(foodLog FoodLog) *Handler {
	return &Handler{foodLog: foodLog}
}

type logFoodRequest struct {
	Text string `json:"text"`
}

type selectMeasureRequest struct {
	MeasureIndex *int `json:"measureIndex" binding:"required"`
}

type customGramsRequest struct {
	Grams *float64 `json:"grams" binding:"required"`
}

// portionResponse is returned by every ingredient portion change
type portionResponse struct {
	Applied bool         `json:"applied"`
	State   domain.State `json:"state"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodlog-backend",
		"version": "1.0.0",
	})
}

// GetLog returns the current meals and daily totals
func (h *Handler) GetLog(c *gin.Context) {
	c.JSON(http.StatusOK, h.foodLog.State())
}

// LogFood submits a free-text food description
func (h *Handler) LogFood(c *gin.Context) {
	var req logFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	meals, err := h.foodLog.LogFood(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"loggedMeals": meals,
		"state":       h.foodLog.State(),
	})
}

// RemoveMeal deletes a logged meal
func (h *Handler) RemoveMeal(c *gin.Context) {
	mealIndex, ok := indexParam(c, "mealIndex")
	if !ok {
		return
	}

	if err := h.foodLog.RemoveMeal(mealIndex); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.foodLog.State())
}

// SelectMeasure rescales an ingredient to one of its predefined measures
func (h *Handler) SelectMeasure(c *gin.Context) {
	mealIndex, ingredientIndex, ok := ingredientParams(c)
	if !ok {
		return
	}

	var req selectMeasureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	applied, err := h.foodLog.SelectMeasure(mealIndex, ingredientIndex, *req.MeasureIndex)
	h.respondPortion(c, applied, err)
}

// SetCustomGrams rescales an ingredient to a custom gram amount, or resets it for zero
func (h *Handler) SetCustomGrams(c *gin.Context) {
	mealIndex, ingredientIndex, ok := ingredientParams(c)
	if !ok {
		return
	}

	var req customGramsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	applied, err := h.foodLog.SetCustomGrams(mealIndex, ingredientIndex, *req.Grams)
	h.respondPortion(c, applied, err)
}

// ResetIngredient restores an ingredient's original nutrients
func (h *Handler) ResetIngredient(c *gin.Context) {
	mealIndex, ingredientIndex, ok := ingredientParams(c)
	if !ok {
		return
	}

	applied, err := h.foodLog.ResetIngredient(mealIndex, ingredientIndex)
	h.respondPortion(c, applied, err)
}

func (h *Handler) respondPortion(c *gin.Context, applied bool, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, portionResponse{Applied: applied, State: h.foodLog.State()})
}

// Events streams state snapshots as Server-Sent Events until the client disconnects
func (h *Handler) Events(c *gin.Context) {
	updates, unsubscribe := h.foodLog.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("state", state)
			c.Writer.Flush()
		}
	}
}

func ingredientParams(c *gin.Context) (int, int, bool) {
	mealIndex, ok := indexParam(c, "mealIndex")
	if !ok {
		return 0, 0, false
	}
	ingredientIndex, ok := indexParam(c, "ingredientIndex")
	if !ok {
		return 0, 0, false
	}
	return mealIndex, ingredientIndex, true
}

func indexParam(c *gin.Context, name string) (int, bool) {
	index, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return index, true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.UserMessage(err)})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMealNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrMeasureNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRequestInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": domain.UserMessage(err)})
	case errors.Is(err, domain.ErrServiceFailure),
		errors.Is(err, domain.ErrInvalidResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.UserMessage(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.GenericFailureMessage})
	}
}
