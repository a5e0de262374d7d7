package domain

import (
	"encoding/json"
	"fmt"
)

// Ingredient is a single food item of a logged meal.
// OriginalNutrients is captured on the first rescale and never overwritten.
type Ingredient struct {
	Name              string             `json:"name"`
	Brand             string             `json:"brand,omitempty"`
	ServingInfo       string             `json:"serving_info,omitempty"`
	Nutrients         Nutrients          `json:"nutrients"`
	OriginalNutrients *Nutrients         `json:"originalNutrients,omitempty"`
	FoodMeasures      []FoodMeasure      `json:"foodMeasures,omitempty"`
	AISelectedPortion *AISelectedPortion `json:"ai_selected_portion,omitempty"`
}

// Clone returns a deep copy of the ingredient
func (i Ingredient) Clone() Ingredient {
	out := i
	if i.OriginalNutrients != nil {
		original := *i.OriginalNutrients
		out.OriginalNutrients = &original
	}
	if i.FoodMeasures != nil {
		out.FoodMeasures = append([]FoodMeasure(nil), i.FoodMeasures...)
	}
	if i.AISelectedPortion != nil {
		portion := *i.AISelectedPortion
		out.AISelectedPortion = &portion
	}
	return out
}

// Meal is a group of ingredients logged together
type Meal struct {
	ID             string       `json:"id,omitempty"`
	MealName       string       `json:"meal_name"`
	MealSize       string       `json:"meal_size,omitempty"`
	Ingredients    []Ingredient `json:"ingredients"`
	TotalNutrients Nutrients    `json:"total_nutrients"`
}

// Clone returns a deep copy of the meal
func (m Meal) Clone() Meal {
	out := m
	if m.Ingredients != nil {
		out.Ingredients = make([]Ingredient, len(m.Ingredients))
		for i, ing := range m.Ingredients {
			out.Ingredients[i] = ing.Clone()
		}
	}
	return out
}

// LogResponse is the payload returned by the AI service for one food description.
// DailyTotals is the service's own figure; the running total is always recomputed locally.
type LogResponse struct {
	DailyTotals Nutrients `json:"dailyTotals"`
	LoggedMeals []Meal    `json:"loggedMeals"`
}

// UnmarshalJSON rejects payloads missing either dailyTotals or loggedMeals.
func (r *LogResponse) UnmarshalJSON(data []byte) error {
	var aux struct {
		DailyTotals json.RawMessage `json:"dailyTotals"`
		LoggedMeals json.RawMessage `json:"loggedMeals"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if isJSONNull(aux.DailyTotals) {
		return fmt.Errorf("%w: missing dailyTotals", ErrInvalidResponse)
	}
	if isJSONNull(aux.LoggedMeals) {
		return fmt.Errorf("%w: missing loggedMeals", ErrInvalidResponse)
	}

	var out LogResponse
	if err := json.Unmarshal(aux.DailyTotals, &out.DailyTotals); err != nil {
		return fmt.Errorf("%w: dailyTotals: %v", ErrInvalidResponse, err)
	}
	if err := json.Unmarshal(aux.LoggedMeals, &out.LoggedMeals); err != nil {
		return fmt.Errorf("%w: loggedMeals: %v", ErrInvalidResponse, err)
	}

	*r = out
	return nil
}

// State is a snapshot of the food log as seen by the presentation layer
type State struct {
	Meals       []Meal    `json:"meals"`
	DailyTotals Nutrients `json:"dailyTotals"`
	Loading     bool      `json:"loading"`
	Error       string    `json:"error,omitempty"`
}
