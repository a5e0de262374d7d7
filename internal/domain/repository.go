package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MealParser turns a free-text food description into structured meals.
// Implemented by the AI service client.
type MealParser interface {
	ParseMeals(ctx context.Context, text string) (*LogResponse, error)
}
