package usecase

import (
	"testing"

	"github.com/foodlog/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReferenceGramWeight(t *testing.T) {
	tests := []struct {
		name       string
		ingredient *domain.Ingredient
		want       float64
	}{
		{
			name:       "nil ingredient",
			ingredient: nil,
			want:       0,
		},
		{
			name: "AI portion wins over serving info",
			ingredient: &domain.Ingredient{
				ServingInfo:       "100g serving",
				AISelectedPortion: &domain.AISelectedPortion{GramWeight: 150},
			},
			want: 150,
		},
		{
			name: "zero AI portion falls back to serving info",
			ingredient: &domain.Ingredient{
				ServingInfo:       "1 cup (240g)",
				AISelectedPortion: &domain.AISelectedPortion{GramWeight: 0},
			},
			want: 240,
		},
		{
			name:       "first gram match in serving info",
			ingredient: &domain.Ingredient{ServingInfo: "2 slices 56g, about 28g each"},
			want:       56,
		},
		{
			name:       "digits must be immediately followed by g",
			ingredient: &domain.Ingredient{ServingInfo: "100 g serving", FoodMeasures: []domain.FoodMeasure{{GramWeight: 30}}},
			want:       30,
		},
		{
			name: "serving info without grams falls back to first measure",
			ingredient: &domain.Ingredient{
				ServingInfo: "1 large egg",
				FoodMeasures: []domain.FoodMeasure{
					{Label: "1 large", GramWeight: 50},
					{Label: "1 medium", GramWeight: 44},
				},
			},
			want: 50,
		},
		{
			name:       "zero grams in serving info falls back to measure",
			ingredient: &domain.Ingredient{ServingInfo: "0g", FoodMeasures: []domain.FoodMeasure{{GramWeight: 12}}},
			want:       12,
		},
		{
			name:       "nothing resolvable",
			ingredient: &domain.Ingredient{ServingInfo: "a handful", FoodMeasures: []domain.FoodMeasure{{Label: "pinch"}}},
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveReferenceGramWeight(tt.ingredient))
		})
	}
}

func TestParseServingGrams(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"100g serving", 100},
		{"serving 85g", 85},
		{"1.5g", 5},
		{"2 eggs", 0},
		{"", 0},
		{"12oz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseServingGrams(tt.input))
		})
	}
}

func newRescalableIngredient() *domain.Ingredient {
	return &domain.Ingredient{
		Name:        "Chicken breast",
		ServingInfo: "100g",
		Nutrients:   domain.Nutrients{Calories: 200, Protein: 10, Carbs: 20, Fat: 5},
		FoodMeasures: []domain.FoodMeasure{
			{Label: "100g", GramWeight: 100},
			{Label: "1 breast", GramWeight: 172},
		},
	}
}

func TestRescale(t *testing.T) {
	t.Run("scales from reference weight", func(t *testing.T) {
		ing := newRescalableIngredient()

		require.True(t, Rescale(ing, 150))

		assert.Equal(t, domain.Nutrients{Calories: 300, Protein: 15, Carbs: 30, Fat: 7.5}, ing.Nutrients)
		require.NotNil(t, ing.OriginalNutrients)
		assert.Equal(t, domain.Nutrients{Calories: 200, Protein: 10, Carbs: 20, Fat: 5}, *ing.OriginalNutrients)
	})

	t.Run("rounds calories to integer and macros to one decimal", func(t *testing.T) {
		ing := &domain.Ingredient{
			ServingInfo: "30g",
			Nutrients:   domain.Nutrients{Calories: 111, Protein: 3.3, Carbs: 7.7, Fat: 1.1},
		}

		require.True(t, Rescale(ing, 40))

		assert.Equal(t, 148.0, ing.Nutrients.Calories)
		assert.Equal(t, 4.4, ing.Nutrients.Protein)
		assert.Equal(t, 10.3, ing.Nutrients.Carbs)
		assert.Equal(t, 1.5, ing.Nutrients.Fat)
	})

	t.Run("half calories round away from zero", func(t *testing.T) {
		ing := &domain.Ingredient{ServingInfo: "30g", Nutrients: domain.Nutrients{Calories: 111}}

		require.True(t, Rescale(ing, 45))

		assert.Equal(t, 167.0, ing.Nutrients.Calories)
	})

	t.Run("repeated rescales start from the original snapshot", func(t *testing.T) {
		ing := newRescalableIngredient()

		require.True(t, Rescale(ing, 33))
		require.True(t, Rescale(ing, 77))
		require.True(t, Rescale(ing, 250))

		assert.Equal(t, domain.Nutrients{Calories: 500, Protein: 25, Carbs: 50, Fat: 12.5}, ing.Nutrients)
		assert.Equal(t, domain.Nutrients{Calories: 200, Protein: 10, Carbs: 20, Fat: 5}, *ing.OriginalNutrients)
	})

	t.Run("existing snapshot is never overwritten", func(t *testing.T) {
		ing := newRescalableIngredient()
		ing.OriginalNutrients = &domain.Nutrients{Calories: 100, Protein: 1, Carbs: 2, Fat: 3}

		require.True(t, Rescale(ing, 200))

		assert.Equal(t, domain.Nutrients{Calories: 100, Protein: 1, Carbs: 2, Fat: 3}, *ing.OriginalNutrients)
		assert.Equal(t, domain.Nutrients{Calories: 200, Protein: 2, Carbs: 4, Fat: 6}, ing.Nutrients)
	})

	t.Run("zero requested weight is a no-op", func(t *testing.T) {
		ing := newRescalableIngredient()
		before := ing.Nutrients

		assert.False(t, Rescale(ing, 0))
		assert.False(t, Rescale(ing, -10))

		assert.Equal(t, before, ing.Nutrients)
		assert.Nil(t, ing.OriginalNutrients)
	})

	t.Run("unresolvable reference weight is a no-op", func(t *testing.T) {
		ing := &domain.Ingredient{
			ServingInfo: "some",
			Nutrients:   domain.Nutrients{Calories: 50},
		}

		assert.False(t, Rescale(ing, 100))
		assert.Equal(t, 50.0, ing.Nutrients.Calories)
		assert.Nil(t, ing.OriginalNutrients)
	})

	t.Run("nil ingredient", func(t *testing.T) {
		assert.False(t, Rescale(nil, 100))
	})
}

func TestReset(t *testing.T) {
	t.Run("round trip restores original values exactly", func(t *testing.T) {
		ing := &domain.Ingredient{
			ServingInfo: "37g",
			Nutrients:   domain.Nutrients{Calories: 143, Protein: 3.14, Carbs: 27.18, Fat: 1.41},
		}
		before := ing.Nutrients

		require.True(t, Rescale(ing, 91))
		require.NotEqual(t, before, ing.Nutrients)
		require.True(t, Reset(ing))

		assert.Equal(t, before, ing.Nutrients)
	})

	t.Run("reset is idempotent", func(t *testing.T) {
		ing := newRescalableIngredient()
		require.True(t, Rescale(ing, 60))

		Reset(ing)
		once := ing.Nutrients
		Reset(ing)

		assert.Equal(t, once, ing.Nutrients)
		assert.NotNil(t, ing.OriginalNutrients)
	})

	t.Run("never rescaled is a no-op", func(t *testing.T) {
		ing := newRescalableIngredient()
		before := ing.Nutrients

		assert.False(t, Reset(ing))
		assert.Equal(t, before, ing.Nutrients)
	})

	t.Run("nil ingredient", func(t *testing.T) {
		assert.False(t, Reset(nil))
	})
}
