// internal/venues/places.go
// Google Places text search client.

package venues

import (
	"context"
	"fmt"

	places "google.golang.org/api/places/v1"
	"google.golang.org/api/option"
)

// LocationBias steers provider results toward a point without excluding
// results outside it.
type LocationBias struct {
	Lat float64
	Lng float64
}

// biasRadiusMeters is the circle radius applied around a location bias.
const biasRadiusMeters = 25000

// PlacesClient performs a text search against a places provider. Declared as
// an interface so the search pipeline can be tested without the live API.
// bias may be nil.
type PlacesClient interface {
	SearchText(ctx context.Context, query string, bias *LocationBias) ([]Venue, error)
}

type googlePlacesClient struct {
	service *places.Service
}

// NewGooglePlacesClient creates a Places API client authenticated by API key
func NewGooglePlacesClient(ctx context.Context, apiKey string) (PlacesClient, error) {
	service, err := places.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create places service: %w", err)
	}
	return &googlePlacesClient{service: service}, nil
}

func (c *googlePlacesClient) SearchText(ctx context.Context, query string, bias *LocationBias) ([]Venue, error) {
	req := &places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:      query,
		MaxResultCount: 20,
	}
	if bias != nil {
		req.LocationBias = &places.GoogleMapsPlacesV1SearchTextRequestLocationBias{
			Circle: &places.GoogleMapsPlacesV1Circle{
				Center: &places.GoogleTypeLatLng{
					Latitude:  bias.Lat,
					Longitude: bias.Lng,
				},
				Radius: biasRadiusMeters,
			},
		}
	}

	call := c.service.Places.SearchText(req)
	call.Header().Set("X-Goog-FieldMask",
		"places.id,places.displayName,places.formattedAddress,places.location,places.rating,places.types")

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("places search failed: %w", err)
	}

	venues := make([]Venue, 0, len(resp.Places))
	for _, p := range resp.Places {
		v := Venue{
			PlaceID: p.Id,
			Address: p.FormattedAddress,
			Rating:  p.Rating,
			Types:   p.Types,
		}
		if p.DisplayName != nil {
			v.Name = p.DisplayName.Text
		}
		if p.Location != nil {
			v.Latitude = p.Location.Latitude
			v.Longitude = p.Location.Longitude
		}
		venues = append(venues, v)
	}
	return venues, nil
}
