package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/foodlog/backend/internal/domain"
	"github.com/foodlog/backend/internal/logger"
	"go.uber.org/zap"
)

// Package-level compiled regex pattern for performance
var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// FoodLogServiceConfig holds configuration for the food log service
type FoodLogServiceConfig struct {
	CacheTTL time.Duration
}

// FoodLogService owns the session's food log and serializes every mutation.
// The AI call runs outside the lock; only one may be pending at a time.
type FoodLogService struct {
	parser   domain.MealParser
	cache    domain.CacheRepository
	cacheTTL time.Duration
	log      *zap.Logger

	mu          sync.Mutex
	store       *MealStore
	loading     bool
	lastError   string
	subscribers map[chan domain.State]struct{}
}

// NewFoodLogService creates a food log service. cache may be nil to disable response caching.
func NewFoodLogService(
	parser domain.MealParser,
	cache domain.CacheRepository,
	config FoodLogServiceConfig,
) *FoodLogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &FoodLogService{
		parser:      parser,
		cache:       cache,
		cacheTTL:    cacheTTL,
		log:         logger.Named("food_log"),
		store:       NewMealStore(),
		subscribers: make(map[chan domain.State]struct{}),
	}
}

// LogFood sends a food description to the AI service and appends the returned meals.
// On failure the meal list is left untouched and the error message is kept in the state.
func (s *FoodLogService) LogFood(ctx context.Context, text string) ([]domain.Meal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.mu.Lock()
		s.lastError = domain.UserMessage(domain.ErrEmptyInput)
		s.publishLocked()
		s.mu.Unlock()
		return nil, domain.ErrEmptyInput
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, domain.ErrRequestInFlight
	}
	s.loading = true
	s.lastError = ""
	s.publishLocked()
	s.mu.Unlock()

	resp, err := s.fetchMeals(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastError = domain.UserMessage(err)
		s.log.Warn("food log request failed", zap.String("text", text), zap.Error(err))
		s.publishLocked()
		return nil, err
	}

	// A blank submit during the request may have set an error
	s.lastError = ""
	appended := s.store.AppendMeals(resp.LoggedMeals)
	s.checkServiceTotals(appended, resp.DailyTotals)
	s.log.Info("meals logged",
		zap.Int("appended", len(appended)),
		zap.Int("total_meals", s.store.Len()),
		zap.Float64("daily_calories", s.store.DailyTotals().Calories))
	s.publishLocked()
	return appended, nil
}

// RemoveMeal deletes the meal at index
func (s *FoodLogService) RemoveMeal(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RemoveMeal(index); err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

// SelectMeasure rescales an ingredient to the gram weight of one of its food measures.
// Returns false when the ingredient has no usable reference weight.
func (s *FoodLogService) SelectMeasure(mealIndex, ingredientIndex, measureIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ing, err := s.store.Ingredient(mealIndex, ingredientIndex)
	if err != nil {
		return false, err
	}
	if measureIndex < 0 || measureIndex >= len(ing.FoodMeasures) {
		return false, fmt.Errorf("%w: index %d (have %d)", domain.ErrMeasureNotFound, measureIndex, len(ing.FoodMeasures))
	}

	return s.applyLocked(mealIndex, ing, func(ing *domain.Ingredient) bool {
		return Rescale(ing, ing.FoodMeasures[measureIndex].GramWeight)
	})
}

// SetCustomGrams rescales an ingredient to grams, or resets it when grams is not positive
func (s *FoodLogService) SetCustomGrams(mealIndex, ingredientIndex int, grams float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ing, err := s.store.Ingredient(mealIndex, ingredientIndex)
	if err != nil {
		return false, err
	}

	return s.applyLocked(mealIndex, ing, func(ing *domain.Ingredient) bool {
		if grams > 0 {
			return Rescale(ing, grams)
		}
		return Reset(ing)
	})
}

// ResetIngredient restores an ingredient's original nutrients
func (s *FoodLogService) ResetIngredient(mealIndex, ingredientIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ing, err := s.store.Ingredient(mealIndex, ingredientIndex)
	if err != nil {
		return false, err
	}

	return s.applyLocked(mealIndex, ing, Reset)
}

// State returns a snapshot of the current food log
func (s *FoodLogService) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers for state changes. The current state is delivered first.
// Slow subscribers only see the latest state. Call the returned func to unsubscribe.
func (s *FoodLogService) Subscribe() (<-chan domain.State, func()) {
	ch := make(chan domain.State, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// applyLocked runs a nutrient mutation and, if it applied, recomputes totals and notifies subscribers
func (s *FoodLogService) applyLocked(mealIndex int, ing *domain.Ingredient, mutate func(*domain.Ingredient) bool) (bool, error) {
	if !mutate(ing) {
		s.log.Debug("portion change not applied",
			zap.String("ingredient", ing.Name),
			zap.Float64("reference_grams", ResolveReferenceGramWeight(ing)))
		return false, nil
	}

	if err := s.store.RecalculateMeal(mealIndex); err != nil {
		return false, err
	}
	s.publishLocked()
	return true, nil
}

// fetchMeals looks up a parsed batch for text.
// Flow: check cache -> call AI service -> cache -> return
func (s *FoodLogService) fetchMeals(ctx context.Context, text string) (*domain.LogResponse, error) {
	cacheKey := generateCacheKey(text)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		s.log.Debug("using cached AI response", zap.String("key", cacheKey))
		return cached, nil
	}

	resp, err := s.parser.ParseMeals(ctx, text)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, domain.ErrInvalidResponse
	}

	if err := s.setInCache(ctx, cacheKey, resp); err != nil {
		// Log but don't fail if caching fails
		s.log.Warn("failed to cache AI response", zap.String("key", cacheKey), zap.Error(err))
	}

	return resp, nil
}

// checkServiceTotals logs when the service's dailyTotals disagree with the returned batch.
// The service figure is never used for the running total.
func (s *FoodLogService) checkServiceTotals(batch []domain.Meal, serviceTotals domain.Nutrients) {
	local := RecalculateDailyTotals(batch)
	if local != serviceTotals {
		s.log.Debug("ignoring service dailyTotals",
			zap.Float64("service_calories", serviceTotals.Calories),
			zap.Float64("batch_calories", local.Calories))
	}
}

func (s *FoodLogService) snapshotLocked() domain.State {
	return domain.State{
		Meals:       s.store.Meals(),
		DailyTotals: s.store.DailyTotals(),
		Loading:     s.loading,
		Error:       s.lastError,
	}
}

// publishLocked delivers the current state to every subscriber without blocking
func (s *FoodLogService) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Drop the stale state and replace it with the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// generateCacheKey creates a normalized cache key from a food description.
// Format: "foodlog:{normalized_text}"
func generateCacheKey(text string) string {
	return fmt.Sprintf("foodlog:%s", normalizeForCacheKey(text))
}

// normalizeForCacheKey lowercases and collapses whitespace.
// Punctuation is kept: "1.5 cups" and "15 cups" are different foods.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(strings.TrimSpace(s))
	return multipleSpacesRegex.ReplaceAllString(result, " ")
}

// getFromCache retrieves a parsed batch from cache
func (s *FoodLogService) getFromCache(ctx context.Context, key string) (*domain.LogResponse, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var resp domain.LogResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.log.Warn("evicting undecodable cached response", zap.String("key", key), zap.Error(err))
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("failed to evict cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, domain.ErrCacheMiss
	}
	return &resp, nil
}

// setInCache stores a parsed batch in cache
func (s *FoodLogService) setInCache(ctx context.Context, key string, resp *domain.LogResponse) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
