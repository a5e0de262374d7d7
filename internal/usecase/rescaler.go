package usecase

import (
	"math"
	"regexp"
	"strconv"

	"github.com/foodlog/backend/internal/domain"
)

// servingGramsRegex matches the first run of digits immediately followed by "g", e.g. "100g serving"
var servingGramsRegex = regexp.MustCompile(`(\d+)g`)

// ResolveReferenceGramWeight returns the gram weight the ingredient's nutrients are anchored to.
// Priority: AI selected portion, then "<N>g" in serving info, then the first food measure.
// Zero means the ingredient cannot be rescaled.
func ResolveReferenceGramWeight(ing *domain.Ingredient) float64 {
	if ing == nil {
		return 0
	}

	if ing.AISelectedPortion != nil && ing.AISelectedPortion.GramWeight > 0 {
		return ing.AISelectedPortion.GramWeight
	}

	if grams := parseServingGrams(ing.ServingInfo); grams > 0 {
		return grams
	}

	if len(ing.FoodMeasures) > 0 && ing.FoodMeasures[0].GramWeight > 0 {
		return ing.FoodMeasures[0].GramWeight
	}

	return 0
}

// parseServingGrams extracts N from the first "<N>g" in free-text serving info
func parseServingGrams(servingInfo string) float64 {
	match := servingGramsRegex.FindStringSubmatch(servingInfo)
	if len(match) < 2 {
		return 0
	}
	grams, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return grams
}

// Rescale recomputes the ingredient's nutrients for requestedGrams, always from the
// original snapshot. The snapshot is taken on the first successful call.
// Returns false without touching the ingredient when either weight is not positive.
// Callers must recalculate meal and daily totals afterwards.
func Rescale(ing *domain.Ingredient, requestedGrams float64) bool {
	if ing == nil || requestedGrams <= 0 {
		return false
	}

	reference := ResolveReferenceGramWeight(ing)
	if reference <= 0 {
		return false
	}

	if ing.OriginalNutrients == nil {
		original := ing.Nutrients
		ing.OriginalNutrients = &original
	}

	multiplier := requestedGrams / reference
	base := *ing.OriginalNutrients

	ing.Nutrients = domain.Nutrients{
		Calories: math.Round(base.Calories * multiplier),
		Protein:  roundToTenth(base.Protein * multiplier),
		Carbs:    roundToTenth(base.Carbs * multiplier),
		Fat:      roundToTenth(base.Fat * multiplier),
	}
	return true
}

// Reset restores the ingredient's nutrients from the original snapshot.
// Returns false when the ingredient was never rescaled.
func Reset(ing *domain.Ingredient) bool {
	if ing == nil || ing.OriginalNutrients == nil {
		return false
	}
	ing.Nutrients = *ing.OriginalNutrients
	return true
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
