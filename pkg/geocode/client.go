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
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/kronpano/city-map-poster/pkg/buildinfo"
	"github.com/kronpano/city-map-poster/pkg/cache"
	perrors "github.com/kronpano/city-map-poster/pkg/errors"
	"github.com/kronpano/city-map-poster/pkg/geo"
	"github.com/kronpano/city-map-poster/pkg/observability"
)

// DefaultEndpoint is the public Nominatim instance.
const DefaultEndpoint = "https://nominatim.openstreetmap.org"

// Options configures a [Client].
type Options struct {
	Endpoint   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Cache      cache.Cache
	Keyer      cache.Keyer
	// Refresh bypasses cached results but still stores fresh ones.
	Refresh bool
	// Interval is the minimum time between requests; zero means one second.
	Interval time.Duration
	Logger   *log.Logger
}

// Client is a Nominatim geocoder.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	cache     cache.Cache
	keys      cache.Keyer
	refresh   bool
	limiter   *rate.Limiter
	logger    *log.Logger
}

// New creates a client. Unset options take their defaults.
func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	hc := *opts.HTTPClient
	hc.Transport = observability.Transport(hc.Transport)
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Client{
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		userAgent: opts.UserAgent,
		http:      &hc,
		cache:     opts.Cache,
		keys:      opts.Keyer,
		refresh:   opts.Refresh,
		limiter:   rate.NewLimiter(rate.Every(opts.Interval), 1),
		logger:    opts.Logger,
	}
}

// Result is a geocoded location.
type Result struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Region      string  `json:"region,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Point returns the result's coordinates.
func (r Result) Point() geo.Point {
	return geo.Point{Lat: r.Lat, Lon: r.Lon}
}

// Locate returns the place for city and country with coordinates and
// region filled in.
func (c *Client) Locate(ctx context.Context, city, country string) (geo.Place, error) {
	if err := validate(city, country); err != nil {
		return geo.Place{}, err
	}

	var res Result
	key := c.keys.GeocodeKey(city, country)
	if c.lookup(ctx, key, &res) {
		c.logger.Debug("Using cached coordinates", "city", city, "country", country)
	} else {
		found, err := c.search(ctx, city, country)
		if err != nil {
			return geo.Place{}, err
		}
		res = found
		c.store(ctx, key, res, cache.TTLGeocode)
		c.store(ctx, c.keys.RegionKey(city, country), res.Region, cache.TTLGeocode)
		c.logger.Info("Found location", "name", res.DisplayName, "lat", res.Lat, "lon", res.Lon)
	}

	p := res.Point()
	if err := p.Validate(); err != nil {
		return geo.Place{}, perrors.Wrap(perrors.ErrCodeGeocode, err, "geocoder returned invalid coordinates")
	}
	return geo.Place{City: city, Country: country, Region: res.Region, Point: p}, nil
}

// Region returns the state, province, region or county of city. An empty
// string with a nil error means none is known.
func (c *Client) Region(ctx context.Context, city, country string) (string, error) {
	if err := validate(city, country); err != nil {
		return "", err
	}

	var region string
	key := c.keys.RegionKey(city, country)
	if c.lookup(ctx, key, &region) {
		return region, nil
	}

	res, err := c.search(ctx, city, country)
	switch {
	case perrors.Is(err, perrors.ErrCodeNotFound):
		c.logger.Warn("Could not find state/province information", "city", city)
	case err != nil:
		return "", err
	default:
		region = res.Region
	}
	c.store(ctx, key, region, cache.TTLGeocode)
	return region, nil
}

func validate(city, country string) error {
	if err := perrors.ValidatePlaceName("city", city); err != nil {
		return err
	}
	return perrors.ValidatePlaceName("country", country)
}

func (c *Client) lookup(ctx context.Context, key string, v any) bool {
	if c.refresh {
		return false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Cache read failed", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("Discarding corrupt cache entry", "key", key, "err", err)
		return false
	}
	return true
}

func (c *Client) store(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("Cache write failed", "key", key, "err", err)
	}
}

// searchResult is one entry of a Nominatim jsonv2 search response.
type searchResult struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// regionKeys are the address fields tried for the region, in order.
var regionKeys = []string{"state", "province", "region", "county"}

func (c *Client) search(ctx context.Context, city, country string) (Result, error) {
	q := url.Values{}
	q.Set("q", city+", "+country)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")
	u := c.endpoint + "/search?" + q.Encode()

	var results []searchResult
	err := cache.RetryWithBackoff(ctx, func() error {
		results = nil
		return c.get(ctx, u, &results)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		return Result{}, perrors.Wrap(perrors.ErrCodeGeocode, err, "geocode %s, %s", city, country)
	}
	if len(results) == 0 {
		return Result{}, perrors.New(perrors.ErrCodeNotFound, "could not find coordinates for %s, %s", city, country)
	}

	r := results[0]
	lat, err1 := strconv.ParseFloat(r.Lat, 64)
	lon, err2 := strconv.ParseFloat(r.Lon, 64)
	if err := errors.Join(err1, err2); err != nil {
		return Result{}, perrors.Wrap(perrors.ErrCodeGeocode, err, "parse coordinates")
	}
	return Result{Lat: lat, Lon: lon, Region: regionOf(r.Address), DisplayName: r.DisplayName}, nil
}

func regionOf(addr map[string]string) string {
	for _, k := range regionKeys {
		if v := strings.TrimSpace(addr[k]); v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, u string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
