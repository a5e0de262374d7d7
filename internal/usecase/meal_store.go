package usecase

import (
	"fmt"

	"github.com/foodlog/backend/internal/domain"
	"github.com/google/uuid"
)

// MealStore holds the meals logged in the current session, in arrival order.
// It is not safe for concurrent use; FoodLogService serializes access.
type MealStore struct {
	meals       []domain.Meal
	dailyTotals domain.Nutrients
}

// NewMealStore creates an empty meal store
func NewMealStore() *MealStore {
	return &MealStore{}
}

// AppendMeals adds a batch of meals after the existing ones and recomputes totals.
// Every appended meal gets a fresh ID, so replaying a batch never duplicates one.
// Returns copies of the appended meals.
func (s *MealStore) AppendMeals(batch []domain.Meal) []domain.Meal {
	appended := make([]domain.Meal, 0, len(batch))
	for _, meal := range batch {
		meal = meal.Clone()
		meal.ID = uuid.New().String()
		RecalculateMealTotals(&meal)
		s.meals = append(s.meals, meal)
		appended = append(appended, meal.Clone())
	}
	s.dailyTotals = RecalculateDailyTotals(s.meals)
	return appended
}

// RemoveMeal deletes the meal at index. Out of range leaves the store untouched.
func (s *MealStore) RemoveMeal(index int) error {
	if index < 0 || index >= len(s.meals) {
		return fmt.Errorf("%w: index %d (have %d)", domain.ErrMealNotFound, index, len(s.meals))
	}
	s.meals = append(s.meals[:index], s.meals[index+1:]...)
	s.dailyTotals = RecalculateDailyTotals(s.meals)
	return nil
}

// Ingredient returns the stored ingredient for in-place mutation.
// Call RecalculateMeal after changing its nutrients.
func (s *MealStore) Ingredient(mealIndex, ingredientIndex int) (*domain.Ingredient, error) {
	meal, err := s.meal(mealIndex)
	if err != nil {
		return nil, err
	}
	if ingredientIndex < 0 || ingredientIndex >= len(meal.Ingredients) {
		return nil, fmt.Errorf("%w: meal %d ingredient %d (have %d)",
			domain.ErrIngredientNotFound, mealIndex, ingredientIndex, len(meal.Ingredients))
	}
	return &meal.Ingredients[ingredientIndex], nil
}

// RecalculateMeal recomputes one meal's totals and then the daily totals
func (s *MealStore) RecalculateMeal(mealIndex int) error {
	meal, err := s.meal(mealIndex)
	if err != nil {
		return err
	}
	RecalculateMealTotals(meal)
	s.dailyTotals = RecalculateDailyTotals(s.meals)
	return nil
}

// Meals returns a deep copy of the stored meals
func (s *MealStore) Meals() []domain.Meal {
	out := make([]domain.Meal, len(s.meals))
	for i, meal := range s.meals {
		out[i] = meal.Clone()
	}
	return out
}

// DailyTotals returns the sum of all meals' totals
func (s *MealStore) DailyTotals() domain.Nutrients {
	return s.dailyTotals
}

// Len returns the number of stored meals
func (s *MealStore) Len() int {
	return len(s.meals)
}

func (s *MealStore) meal(index int) (*domain.Meal, error) {
	if index < 0 || index >= len(s.meals) {
		return nil, fmt.Errorf("%w: index %d (have %d)", domain.ErrMealNotFound, index, len(s.meals))
	}
	return &s.meals[index], nil
}
