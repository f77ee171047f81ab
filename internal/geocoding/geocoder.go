package geocoding

import (
	"context"
	"errors"
	"fmt"

	"github.com/faldi95/supplynet/internal/models"
)

// Geocoder looks up a free-form query. A nil result with a nil error means no match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

var (
	ErrServiceUnavailable = errors.New("geocoding service unavailable")
	ErrTimedOut           = errors.New("geocoding request timed out")
)

// ServiceError is a transient failure of the geocoding service. Retrying may succeed.
type ServiceError struct {
	Query string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("geocoding %q: %v", e.Query, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a service or timeout failure.
func IsTransient(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
