package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"project-manager/webapp/internal/cache"
	"project-manager/webapp/internal/models"
)

// UserAPI is the slice of the remote client the directory needs.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

const usersCacheKey = "users:all"

// UserDirectory serves the full user list for the owner selector, caching
// it wholesale since the backend only exposes a list-everything endpoint.
type UserDirectory struct {
	api    UserAPI
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewUserDirectory(api UserAPI, c cache.Cache, ttl time.Duration, logger *slog.Logger) *UserDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserDirectory{api: api, cache: c, ttl: ttl, logger: logger}
}

// Users returns the cached user list, fetching and caching on a miss.
// A cache backend failure degrades to a direct fetch.
func (d *UserDirectory) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := d.cache.Get(usersCacheKey, &users)
	if err == nil {
		return users, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		d.logger.Error("user cache read failed", "error", err)
	}

	users, err = d.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.cache.Set(usersCacheKey, users, d.ttl); err != nil {
		d.logger.Error("user cache write failed", "error", err)
	}
	return users, nil
}

// Invalidate drops the cached list, forcing the next read to refetch.
func (d *UserDirectory) Invalidate() error {
	return d.cache.Delete(usersCacheKey)
}
