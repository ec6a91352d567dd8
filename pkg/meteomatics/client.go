package meteomatics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.meteomatics.com"

// maxLocationsPerRequest caps how many locations a single API call carries;
// larger batches are chunked.
const maxLocationsPerRequest = 50

// Client queries the Meteomatics REST API with basic auth.
type Client struct {
	username   string
	password   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	clock      clockwork.Clock
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithClock injects the clock used for query valid-datetimes.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a Meteomatics client with the given credentials.
func NewClient(username, password string, opts ...Option) *Client {
	c := &Client{
		username:   username,
		password:   password,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Provider.
func (c *Client) Name() string { return "meteomatics" }

// Available implements Provider. The API requires basic auth credentials.
func (c *Client) Available() bool {
	return c.username != "" && c.password != ""
}

// Temperature implements Provider.
func (c *Client) Temperature(ctx context.Context, lat, lon float64) (Reading, error) {
	readings, err := c.Temperatures(ctx, []Coordinate{{Lat: lat, Lon: lon}})
	if err != nil {
		return Reading{}, err
	}
	if len(readings) == 0 {
		return Reading{}, eris.Errorf("meteomatics: no reading for %.4f,%.4f", lat, lon)
	}
	return readings[0], nil
}

// Temperatures implements Provider, chunking large batches into multiple
// API calls.
func (c *Client) Temperatures(ctx context.Context, coords []Coordinate) ([]Reading, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	readings := make([]Reading, 0, len(coords))
	for start := 0; start < len(coords); start += maxLocationsPerRequest {
		end := min(start+maxLocationsPerRequest, len(coords))
		chunk, err := c.fetch(ctx, coords[start:end])
		if err != nil {
			return nil, err
		}
		readings = append(readings, chunk...)
	}
	return readings, nil
}

// TimeSeries returns hourly temperatures for one location between from and
// to, inclusive. Times are truncated to whole seconds in UTC.
func (c *Client) TimeSeries(ctx context.Context, lat, lon float64, from, to time.Time) ([]Reading, error) {
	if to.Before(from) {
		return nil, eris.New("meteomatics: time range end before start")
	}

	span := fmt.Sprintf("%s--%s:PT1H",
		from.UTC().Format("2006-01-02T15:04:05Z"),
		to.UTC().Format("2006-01-02T15:04:05Z"))
	reqURL := fmt.Sprintf("%s/%s/%s/%.6f,%.6f/json",
		c.baseURL, span, TemperatureParameter, lat, lon)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	return resp.series()
}

// fetch performs one API call for up to maxLocationsPerRequest locations.
// The URL shape is /{validdatetime}/{parameter}/{locations}/json with
// locations joined by "+".
func (c *Client) fetch(ctx context.Context, coords []Coordinate) ([]Reading, error) {
	locs := make([]string, len(coords))
	for i, co := range coords {
		locs[i] = fmt.Sprintf("%.6f,%.6f", co.Lat, co.Lon)
	}

	validTime := c.clock.Now().UTC().Format("2006-01-02T15:04:05Z")
	reqURL := fmt.Sprintf("%s/%s/%s/%s/json",
		c.baseURL, validTime, TemperatureParameter, strings.Join(locs, "+"))

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	return resp.readings()
}

// get performs one rate-limited authenticated API call and parses the body.
func (c *Client) get(ctx context.Context, reqURL string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "meteomatics: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "meteomatics: build request")
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "meteomatics: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, eris.Errorf("meteomatics: authentication failed (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("meteomatics: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "meteomatics: read body")
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, eris.Wrap(err, "meteomatics: parse response")
	}
	if apiResp.Status != "" && !strings.EqualFold(apiResp.Status, "OK") {
		return nil, eris.Errorf("meteomatics: API status %q", apiResp.Status)
	}

	return &apiResp, nil
}

// apiResponse is the Meteomatics JSON response shape.
type apiResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Dates []struct {
				Date  time.Time `json:"date"`
				Value float64   `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}

// readings flattens the first date value per coordinate, preserving the
// response order (which matches the request order).
func (r *apiResponse) readings() ([]Reading, error) {
	if len(r.Data) == 0 {
		return nil, eris.New("meteomatics: response carries no data")
	}

	var out []Reading
	for _, co := range r.Data[0].Coordinates {
		if len(co.Dates) == 0 {
			continue
		}
		out = append(out, Reading{
			Lat:        co.Lat,
			Lon:        co.Lon,
			TempC:      co.Dates[0].Value,
			ObservedAt: co.Dates[0].Date,
		})
	}
	if len(out) == 0 {
		return nil, eris.New("meteomatics: response carries no readings")
	}
	return out, nil
}

// series flattens every date of the first coordinate, in response order.
func (r *apiResponse) series() ([]Reading, error) {
	if len(r.Data) == 0 || len(r.Data[0].Coordinates) == 0 {
		return nil, eris.New("meteomatics: response carries no data")
	}

	co := r.Data[0].Coordinates[0]
	out := make([]Reading, 0, len(co.Dates))
	for _, d := range co.Dates {
		out = append(out, Reading{
			Lat:        co.Lat,
			Lon:        co.Lon,
			TempC:      d.Value,
			ObservedAt: d.Date,
		})
	}
	if len(out) == 0 {
		return nil, eris.New("meteomatics: response carries no readings")
	}
	return out, nil
}
