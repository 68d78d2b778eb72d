package geocode

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ResolveKey reverse-resolves a place identifier to a structured address.
func (c *client) ResolveKey(ctx context.Context, placeKey string) (*Address, error) {
	placeKey = strings.TrimSpace(placeKey)
	if placeKey == "" {
		return nil, newFailure(KindInvalidInput, eris.New("empty place key"))
	}

	if c.cache != nil {
		if cached, ok, err := c.cache.GetReverse(ctx, placeKey); err != nil {
			zap.L().Debug("geocode cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	var addr *Address
	err := c.retry(ctx, func(ctx context.Context) error {
		a, err := c.reverseOnce(ctx, placeKey)
		if err != nil {
			return err
		}
		addr = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.PutReverse(ctx, placeKey, addr); err != nil {
			zap.L().Debug("geocode cache write failed", zap.Error(err))
		}
	}
	return addr, nil
}

func (c *client) reverseOnce(ctx context.Context, placeKey string) (*Address, error) {
	params := url.Values{
		"place_id": {placeKey},
		"key":      {c.apiKey},
	}
	resp, err := c.doGeocodeRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, newFailure(KindNotFound, eris.Errorf("no address for place key %s", placeKey))
	default:
		return nil, newFailure(statusToKind(resp.Status),
			eris.Errorf("status %s: %s", resp.Status, resp.ErrorMessage))
	}
	if len(resp.Results) == 0 {
		return nil, newFailure(KindNotFound, eris.Errorf("empty result set for place key %s", placeKey))
	}

	return componentsToAddress(resp.Results[0].AddressComponents), nil
}

// componentsToAddress flattens the provider's component list into the fields
// the consistency check compares.
func componentsToAddress(components []googleComponent) *Address {
	addr := &Address{}
	for _, comp := range components {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				addr.HouseNumber = comp.LongName
			case "route":
				addr.StreetName = comp.LongName
			case "locality", "postal_town", "sublocality", "sublocality_level_1":
				if addr.City == "" {
					addr.City = comp.LongName
				}
			case "administrative_area_level_1":
				addr.State = comp.ShortName
			case "postal_code":
				addr.ZipCode = comp.LongName
			}
		}
	}
	return addr
}
