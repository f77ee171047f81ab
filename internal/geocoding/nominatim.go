package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/faldi95/supplynet/internal/models"
)

const (
	// DefaultTimeout is the default per-request timeout
	DefaultTimeout = 15 * time.Second

	// maxResponseSize bounds the search response body (1MB)
	maxResponseSize = 1 << 20
)

type NominatimGeocoder struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimGeocoder(cfg models.GeocodingConfig) *NominatimGeocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NominatimGeocoder{
		client:    &http.Client{Timeout: timeout},
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		userAgent: cfg.UserAgent,
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &ServiceError{Query: query, Err: fmt.Errorf("%w: %v", ErrTimedOut, err)}
		}
		return nil, &ServiceError{Query: query, Err: fmt.Errorf("%w: %v", ErrServiceUnavailable, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &ServiceError{Query: query, Err: fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("geocoding %q: unexpected status %d", query, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if isTimeout(err) {
			return nil, &ServiceError{Query: query, Err: fmt.Errorf("%w: %v", ErrTimedOut, err)}
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to decode response for %q: %w", query, err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", places[0].Lon, err)
	}
	return &models.Coordinates{Lat: lat, Lon: lon}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
