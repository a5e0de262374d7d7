package usecase

import (
	"testing"

	"github.com/foodlog/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ingredientWith(name string, n domain.Nutrients) domain.Ingredient {
	return domain.Ingredient{Name: name, Nutrients: n}
}

func TestSumIngredients(t *testing.T) {
	tests := []struct {
		name        string
		ingredients []domain.Ingredient
		want        domain.Nutrients
	}{
		{
			name:        "nil list is zero",
			ingredients: nil,
			want:        domain.Nutrients{},
		},
		{
			name:        "empty list is zero",
			ingredients: []domain.Ingredient{},
			want:        domain.Nutrients{},
		},
		{
			name: "single ingredient",
			ingredients: []domain.Ingredient{
				ingredientWith("egg", domain.Nutrients{Calories: 78, Protein: 6.5, Carbs: 0.5, Fat: 5}),
			},
			want: domain.Nutrients{Calories: 78, Protein: 6.5, Carbs: 0.5, Fat: 5},
		},
		{
			name: "multiple ingredients",
			ingredients: []domain.Ingredient{
				ingredientWith("toast", domain.Nutrients{Calories: 80, Protein: 3, Carbs: 15, Fat: 1}),
				ingredientWith("butter", domain.Nutrients{Calories: 100, Protein: 0, Carbs: 0, Fat: 11.5}),
				ingredientWith("jam", domain.Nutrients{Calories: 50, Protein: 0, Carbs: 13, Fat: 0}),
			},
			want: domain.Nutrients{Calories: 230, Protein: 3, Carbs: 28, Fat: 12.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SumIngredients(tt.ingredients))
		})
	}
}

func TestSumIngredients_OrderIndependent(t *testing.T) {
	a := ingredientWith("a", domain.Nutrients{Calories: 120, Protein: 4.5, Carbs: 20, Fat: 2.5})
	b := ingredientWith("b", domain.Nutrients{Calories: 300, Protein: 25, Carbs: 0, Fat: 21})
	c := ingredientWith("c", domain.Nutrients{Calories: 45, Protein: 0.5, Carbs: 11, Fat: 0})

	want := SumIngredients([]domain.Ingredient{a, b, c})
	orders := [][]domain.Ingredient{
		{a, c, b},
		{b, a, c},
		{b, c, a},
		{c, a, b},
		{c, b, a},
	}
	for _, order := range orders {
		got := SumIngredients(order)
		assert.InDelta(t, want.Calories, got.Calories, 1e-9)
		assert.InDelta(t, want.Protein, got.Protein, 1e-9)
		assert.InDelta(t, want.Carbs, got.Carbs, 1e-9)
		assert.InDelta(t, want.Fat, got.Fat, 1e-9)
	}
}

func TestRecalculateMealTotals(t *testing.T) {
	meal := &domain.Meal{
		MealName: "Breakfast",
		Ingredients: []domain.Ingredient{
			ingredientWith("oats", domain.Nutrients{Calories: 150, Protein: 5, Carbs: 27, Fat: 3}),
			ingredientWith("milk", domain.Nutrients{Calories: 100, Protein: 8, Carbs: 12, Fat: 2.5}),
		},
		TotalNutrients: domain.Nutrients{Calories: 9999},
	}

	got := RecalculateMealTotals(meal)

	want := domain.Nutrients{Calories: 250, Protein: 13, Carbs: 39, Fat: 5.5}
	assert.Equal(t, want, got)
	assert.Equal(t, want, meal.TotalNutrients)

	t.Run("reflects ingredient mutation", func(t *testing.T) {
		meal.Ingredients[1].Nutrients = domain.Nutrients{Calories: 50, Protein: 4, Carbs: 6, Fat: 1}
		RecalculateMealTotals(meal)
		assert.Equal(t, SumIngredients(meal.Ingredients), meal.TotalNutrients)
		assert.Equal(t, 200.0, meal.TotalNutrients.Calories)
	})

	t.Run("meal without ingredients is zero", func(t *testing.T) {
		empty := &domain.Meal{TotalNutrients: domain.Nutrients{Calories: 10}}
		assert.Equal(t, domain.Nutrients{}, RecalculateMealTotals(empty))
	})
}

func TestRecalculateDailyTotals(t *testing.T) {
	t.Run("empty list is zero", func(t *testing.T) {
		assert.Equal(t, domain.Nutrients{}, RecalculateDailyTotals(nil))
	})

	t.Run("sums meal totals", func(t *testing.T) {
		meals := []domain.Meal{
			{TotalNutrients: domain.Nutrients{Calories: 400, Protein: 20, Carbs: 50, Fat: 10}},
			{TotalNutrients: domain.Nutrients{Calories: 600, Protein: 35, Carbs: 60, Fat: 20.5}},
		}
		assert.Equal(t,
			domain.Nutrients{Calories: 1000, Protein: 55, Carbs: 110, Fat: 30.5},
			RecalculateDailyTotals(meals))
	})

	t.Run("uses meal totals not ingredients", func(t *testing.T) {
		meals := []domain.Meal{
			{
				Ingredients:    []domain.Ingredient{ingredientWith("x", domain.Nutrients{Calories: 1})},
				TotalNutrients: domain.Nutrients{Calories: 5},
			},
		}
		assert.Equal(t, 5.0, RecalculateDailyTotals(meals).Calories)
	})
}
