// Package geocode resolves free-form place queries and timezone offsets
// through the Google Maps web service APIs.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/astropenguin/pazel/internal/logging"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"

	// request pacing against the web service quota
	requestsPerSecond = 5
	requestBurst      = 2
)

// APIKeyEnv is the environment variable the API key is read from.
const APIKeyEnv = "GOOGLE_MAPS_API_KEY"

// ErrNoResults reports a query the geocoder matched nothing to.
var ErrNoResults = errors.New("no geocoding results")

// Place is one forward-geocoding result.
type Place struct {
	// Name is the locality component when present, or the first address
	// component otherwise.
	Name      string
	Address   string
	PlaceID   string
	Latitude  float64
	Longitude float64
}

// Zone is a timezone lookup result for a coordinate at an instant.
type Zone struct {
	// ID is the IANA zone name, e.g. "Asia/Tokyo".
	ID string
	// OffsetHours is the total offset from UTC in hours, daylight saving
	// included, at the queried instant.
	OffsetHours float64
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client calls the Maps web services.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logging.Logger
}

// NewClient creates a Maps web service client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		log:     logging.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves a free-form place query to the first matching place.
func (c *Client) Geocode(ctx context.Context, query string) (Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Place{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Add("address", query)
	params.Add("key", c.apiKey)

	body, err := c.get(ctx, "/maps/api/geocode/json", params)
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", query, err)
	}

	var response struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Results      []struct {
			FormattedAddress  string `json:"formatted_address"`
			PlaceID           string `json:"place_id"`
			AddressComponents []struct {
				LongName string   `json:"long_name"`
				Types    []string `json:"types"`
			} `json:"address_components"`
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Place{}, fmt.Errorf("geocode %q: parse response: %w", query, err)
	}

	switch {
	case response.Status == "ZERO_RESULTS",
		response.Status == "OK" && len(response.Results) == 0:
		return Place{}, fmt.Errorf("geocode %q: %w", query, ErrNoResults)
	case response.Status != "OK":
		return Place{}, fmt.Errorf("geocode %q: status %s: %s", query, response.Status, response.ErrorMessage)
	}

	first := response.Results[0]
	name := ""
	for _, comp := range first.AddressComponents {
		for _, typ := range comp.Types {
			if typ == "locality" {
				name = comp.LongName
				break
			}
		}
		if name != "" {
			break
		}
	}
	if name == "" && len(first.AddressComponents) > 0 {
		name = first.AddressComponents[0].LongName
	}

	c.log.Debug(ctx, "geocoded place",
		logging.String("query", query),
		logging.String("place_id", first.PlaceID))

	return Place{
		Name:      name,
		Address:   first.FormattedAddress,
		PlaceID:   first.PlaceID,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}

// Timezone looks up the zone in effect at a coordinate for a given instant.
// The instant matters: it decides whether daylight saving applies.
func (c *Client) Timezone(ctx context.Context, lat, lng float64, at time.Time) (Zone, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Zone{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Add("location", fmt.Sprintf("%.8f,%.8f", lat, lng))
	params.Add("timestamp", strconv.FormatInt(at.Unix(), 10))
	params.Add("key", c.apiKey)

	body, err := c.get(ctx, "/maps/api/timezone/json", params)
	if err != nil {
		return Zone{}, fmt.Errorf("timezone lookup: %w", err)
	}

	var response struct {
		Status       string  `json:"status"`
		ErrorMessage string  `json:"errorMessage"`
		TimeZoneID   string  `json:"timeZoneId"`
		RawOffset    float64 `json:"rawOffset"`
		DSTOffset    float64 `json:"dstOffset"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Zone{}, fmt.Errorf("timezone lookup: parse response: %w", err)
	}
	if response.Status != "OK" {
		return Zone{}, fmt.Errorf("timezone lookup: status %s: %s", response.Status, response.ErrorMessage)
	}

	return Zone{
		ID:          response.TimeZoneID,
		OffsetHours: (response.RawOffset + response.DSTOffset) / 3600,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
