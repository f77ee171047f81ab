package geocoding

import (
	"context"
	"strings"
	"time"

	"github.com/faldi95/supplynet/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Resolver turns place names into locations. Calls are spaced by at least the
// configured minimum delay and transient service errors are retried.
// Resolve never fails: every problem collapses to an unresolved Location.
type Resolver struct {
	geocoder   Geocoder
	country    string
	limiter    *rate.Limiter
	maxRetries int
	errorWait  time.Duration
	logger     *zap.SugaredLogger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewResolver(geocoder Geocoder, country string, cfg models.GeocodingConfig, logger *zap.SugaredLogger) *Resolver {
	limit := rate.Inf
	if cfg.MinDelay > 0 {
		limit = rate.Every(cfg.MinDelay)
	}
	return &Resolver{
		geocoder:   geocoder,
		country:    country,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		errorWait:  cfg.ErrorWait,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func (r *Resolver) Resolve(ctx context.Context, name string) models.Location {
	loc := models.Location{Name: name}
	if strings.TrimSpace(name) == "" {
		r.logger.Warn("Skipping geocoding of empty place name")
		return loc
	}

	query := name
	if r.country != "" {
		query = name + ", " + r.country
	}

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Warnw("Geocoding aborted", "city", name, "error", err)
			return loc
		}

		coords, err := r.geocoder.Geocode(ctx, query)
		if err == nil {
			if coords == nil {
				r.logger.Warnf("No coordinates found for %s", name)
				return loc
			}
			loc.Coordinates = coords
			return loc
		}

		if !IsTransient(err) {
			r.logger.Errorf("Unexpected geocoding error for %s: %v", name, err)
			return loc
		}
		if attempt == r.maxRetries {
			r.logger.Errorf("Geocoding error for %s (service/timeout): %v", name, err)
			return loc
		}

		r.logger.Warnf("Geocoding error for %s, retrying in %s (attempt %d/%d): %v",
			name, r.errorWait, attempt+1, r.maxRetries+1, err)
		if err := r.sleep(ctx, r.errorWait); err != nil {
			r.logger.Warnw("Geocoding aborted", "city", name, "error", err)
			return loc
		}
	}
	return loc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
