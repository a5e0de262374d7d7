package usecase

import "github.com/foodlog/backend/internal/domain"

// SumIngredients returns the element-wise sum of the ingredients' current nutrients.
// An empty list yields all zeros.
func SumIngredients(ingredients []domain.Ingredient) domain.Nutrients {
	var total domain.Nutrients
	for _, ing := range ingredients {
		total = total.Add(ing.Nutrients)
	}
	return total
}

// RecalculateMealTotals assigns meal.TotalNutrients from its ingredients and returns it.
// Must be called after every ingredient nutrient mutation.
func RecalculateMealTotals(meal *domain.Meal) domain.Nutrients {
	meal.TotalNutrients = SumIngredients(meal.Ingredients)
	return meal.TotalNutrients
}

// RecalculateDailyTotals sums the meals' TotalNutrients
func RecalculateDailyTotals(meals []domain.Meal) domain.Nutrients {
	var total domain.Nutrients
	for _, meal := range meals {
		total = total.Add(meal.TotalNutrients)
	}
	return total
}
