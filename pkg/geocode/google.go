package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

type googleResult struct {
	PlaceID          string `json:"place_id"`
	FormattedAddress string `json:"formatted_address"`
	PartialMatch     bool   `json:"partial_match"`
	Geometry         struct {
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	AddressComponents []googleComponent `json:"address_components"`
}

type googleComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Resolve geocodes one address line, consulting the cache first and retrying
// transient provider failures with backoff.
func (c *client) Resolve(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, newFailure(KindInvalidInput, eris.New("empty address"))
	}

	key := cacheKey(address)
	if c.cache != nil {
		if cached, ok := c.cacheGetResolve(ctx, key); ok {
			return cached, nil
		}
	}

	var result *Result
	err := c.retry(ctx, func(ctx context.Context) error {
		r, err := c.resolveOnce(ctx, address)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cachePutResolve(ctx, key, result)
	}
	return result, nil
}

func (c *client) resolveOnce(ctx context.Context, address string) (*Result, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}
	resp, err := c.doGeocodeRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, newFailure(KindNotFound, eris.Errorf("no match for %q", address))
	default:
		return nil, newFailure(statusToKind(resp.Status),
			eris.Errorf("status %s: %s", resp.Status, resp.ErrorMessage))
	}
	if len(resp.Results) == 0 {
		return nil, newFailure(KindNotFound, eris.Errorf("empty result set for %q", address))
	}

	top := resp.Results[0]
	return &Result{
		PlaceKey:         top.PlaceID,
		LocationType:     normalizeLocationType(top.Geometry.LocationType),
		Confidence:       deriveConfidence(top.PartialMatch, len(resp.Results)),
		FormattedAddress: top.FormattedAddress,
	}, nil
}

// doGeocodeRequest performs one rate-limited call against the geocode endpoint.
func (c *client) doGeocodeRequest(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, newFailure(KindTransport, eris.Wrap(err, "rate limit wait"))
	}

	reqURL := googleGeocodeURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newFailure(KindInvalidInput, eris.Wrap(err, "build request"))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newFailure(KindTransport, eris.Wrap(err, "request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, newFailure(httpStatusToKind(resp.StatusCode),
			eris.Errorf("http status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFailure(KindTransport, eris.Wrap(err, "read body"))
	}

	var parsed googleGeocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, newFailure(KindTransport, eris.Wrap(err, "parse response"))
	}
	return &parsed, nil
}

// normalizeLocationType upper-cases the provider value and collapses
// anything unexpected to UNKNOWN.
func normalizeLocationType(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "ROOFTOP"
	case "RANGE_INTERPOLATED":
		return "RANGE_INTERPOLATED"
	case "GEOMETRIC_CENTER":
		return "GEOMETRIC_CENTER"
	case "APPROXIMATE":
		return "APPROXIMATE"
	default:
		return "UNKNOWN"
	}
}

// deriveConfidence estimates match confidence from the signals the provider
// exposes: partial matches and ambiguous multi-result responses score lower.
func deriveConfidence(partial bool, resultCount int) float64 {
	confidence := 1.0
	if partial {
		confidence = 0.6
	}
	if resultCount > 1 {
		confidence -= 0.1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func (c *client) cacheGetResolve(ctx context.Context, key string) (*Result, bool) {
	cached, ok, err := c.cache.GetResolve(ctx, key)
	if err != nil {
		zap.L().Debug("geocode cache read failed", zap.Error(err))
		return nil, false
	}
	return cached, ok
}

func (c *client) cachePutResolve(ctx context.Context, key string, r *Result) {
	if err := c.cache.PutResolve(ctx, key, r); err != nil {
		zap.L().Debug("geocode cache write failed", zap.Error(err))
	}
}
