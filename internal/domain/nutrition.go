package domain

import (
	"bytes"
	"encoding/json"
)

// Nutrients contains the macronutrients tracked per ingredient, meal and day
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"` // grams
	Carbs    float64 `json:"carbs"`   // grams
	Fat      float64 `json:"fat"`     // grams
}

// Add returns the element-wise sum of n and other
func (n Nutrients) Add(other Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + other.Calories,
		Protein:  n.Protein + other.Protein,
		Carbs:    n.Carbs + other.Carbs,
		Fat:      n.Fat + other.Fat,
	}
}

// FoodMeasure is an alternative serving description for an ingredient
type FoodMeasure struct {
	Label              string  `json:"label"`
	PortionDescription string  `json:"portionDescription,omitempty"`
	Unit               string  `json:"unit,omitempty"`
	GramWeight         float64 `json:"gramWeight"`
}

// UnmarshalJSON accepts both "gramWeight" and "gram_weight" for the gram weight.
func (m *FoodMeasure) UnmarshalJSON(data []byte) error {
	type plain FoodMeasure
	var aux struct {
		plain
		AltGramWeight *float64 `json:"gram_weight"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*m = FoodMeasure(aux.plain)
	if m.GramWeight == 0 && aux.AltGramWeight != nil {
		m.GramWeight = *aux.AltGramWeight
	}
	return nil
}

// AISelectedPortion is the portion the AI service anchored an ingredient's nutrients to
type AISelectedPortion struct {
	GramWeight         float64 `json:"gramWeight"`
	PortionDescription string  `json:"portionDescription,omitempty"`
	Reasoning          string  `json:"reasoning,omitempty"`
}

// isJSONNull reports whether a raw JSON value is absent or literally null
func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
