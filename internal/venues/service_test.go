package venues

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlacesClient struct {
	lastQuery string
	lastBias  *LocationBias
	results   []Venue
	err       error
}

func (f *fakePlacesClient) SearchText(ctx context.Context, query string, bias *LocationBias) ([]Venue, error) {
	f.lastQuery = query
	f.lastBias = bias
	return f.results, f.err
}

func coord(v float64) *float64 { return &v }

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("fails without a configured provider", func(t *testing.T) {
		service := NewService(nil, nil, 0)

		_, err := service.Search(ctx, &SearchRequest{Query: "lounge"})

		assert.ErrorIs(t, err, ErrSearchUnavailable)
	})

	t.Run("biases the provider query toward cigars", func(t *testing.T) {
		client := &fakePlacesClient{}
		service := NewService(client, nil, 0)

		_, err := service.Search(ctx, &SearchRequest{Query: "whiskey bar", City: "Austin"})

		require.NoError(t, err)
		assert.Equal(t, "cigar whiskey bar in Austin", client.lastQuery)
	})

	t.Run("leaves cigar queries alone", func(t *testing.T) {
		client := &fakePlacesClient{}
		service := NewService(client, nil, 0)

		_, err := service.Search(ctx, &SearchRequest{Query: "Cigar Lounge"})

		require.NoError(t, err)
		assert.Equal(t, "Cigar Lounge", client.lastQuery)
	})

	t.Run("filters and dedupes provider results", func(t *testing.T) {
		client := &fakePlacesClient{results: []Venue{
			{Name: "Casa del Habano", Types: []string{"cigar_shop"}, Latitude: 40.7128, Longitude: -74.0060},
			{Name: "casa  del habano", Types: []string{"store"}, Latitude: 40.71283, Longitude: -74.00601},
			{Name: "Joe's Pizza", Types: []string{"restaurant"}, Latitude: 40.73, Longitude: -74.0},
		}}
		service := NewService(client, nil, 0)

		venues, err := service.Search(ctx, &SearchRequest{Query: "habano"})

		require.NoError(t, err)
		require.Len(t, venues, 1)
		assert.Equal(t, "Casa del Habano", venues[0].Name)
	})

	t.Run("forwards coordinates to the provider as a bias", func(t *testing.T) {
		client := &fakePlacesClient{}
		service := NewService(client, nil, 0)

		_, err := service.Search(ctx, &SearchRequest{
			Query: "lounge",
			Lat:   coord(30.2672),
			Lng:   coord(-97.7431),
		})

		require.NoError(t, err)
		require.NotNil(t, client.lastBias)
		assert.Equal(t, 30.2672, client.lastBias.Lat)
		assert.Equal(t, -97.7431, client.lastBias.Lng)
	})

	t.Run("searches without a bias when no coordinates are given", func(t *testing.T) {
		client := &fakePlacesClient{}
		service := NewService(client, nil, 0)

		_, err := service.Search(ctx, &SearchRequest{Query: "lounge"})

		require.NoError(t, err)
		assert.Nil(t, client.lastBias)
	})

	t.Run("narrows results to the requested category", func(t *testing.T) {
		client := &fakePlacesClient{results: []Venue{
			{Name: "Havana Cigar Lounge", Latitude: 1, Longitude: 1},
			{Name: "Duke's Tobacco Shop", Latitude: 2, Longitude: 2},
			{Name: "The Humidor Bar", Latitude: 3, Longitude: 3},
		}}
		service := NewService(client, nil, 0)

		venues, err := service.Search(ctx, &SearchRequest{Query: "cigar", Category: "lounge"})

		require.NoError(t, err)
		require.Len(t, venues, 2)
		assert.Equal(t, "Havana Cigar Lounge", venues[0].Name)
		assert.Equal(t, "The Humidor Bar", venues[1].Name)
	})
}

func TestFilterCategory(t *testing.T) {
	in := []Venue{
		{Name: "Havana Cigar Lounge"},
		{Name: "Duke's Cigars", Types: []string{"store"}},
		{Name: "Smoke Ring Club"},
	}

	t.Run("lounge matches lounges, bars and clubs", func(t *testing.T) {
		out := FilterCategory(in, "lounge")

		require.Len(t, out, 2)
		assert.Equal(t, "Havana Cigar Lounge", out[0].Name)
		assert.Equal(t, "Smoke Ring Club", out[1].Name)
	})

	t.Run("shop matches stores and tobacconists", func(t *testing.T) {
		out := FilterCategory(in, "shop")

		require.Len(t, out, 1)
		assert.Equal(t, "Duke's Cigars", out[0].Name)
	})

	t.Run("unknown category passes everything through", func(t *testing.T) {
		assert.Len(t, FilterCategory(in, "speakeasy"), 3)
	})
}

func TestSearchCacheKey(t *testing.T) {
	plain := searchCacheKey("cigar lounge", nil, "")
	biased := searchCacheKey("cigar lounge", &LocationBias{Lat: 30.2672, Lng: -97.7431}, "")
	narrowed := searchCacheKey("cigar lounge", nil, "lounge")

	assert.Equal(t, "venues:search:cigar lounge", plain)
	assert.NotEqual(t, plain, biased)
	assert.NotEqual(t, plain, narrowed)
	assert.NotEqual(t, biased, narrowed)

	// Callers a few meters apart share a cache entry.
	nearby := searchCacheKey("cigar lounge", &LocationBias{Lat: 30.26721, Lng: -97.74311}, "")
	assert.Equal(t, biased, nearby)
}

func TestFilterCigarRelevant(t *testing.T) {
	in := []Venue{
		{Name: "The Humidor Room"},
		{Name: "Corner Deli", Types: []string{"restaurant"}},
		{Name: "Duke's", Types: []string{"tobacconist", "store"}},
		{Name: "Smoke & Barrel Lounge"},
	}

	out := FilterCigarRelevant(in)

	require.Len(t, out, 3)
	assert.Equal(t, "The Humidor Room", out[0].Name)
	assert.Equal(t, "Duke's", out[1].Name)
	assert.Equal(t, "Smoke & Barrel Lounge", out[2].Name)
}

func TestDedupe(t *testing.T) {
	t.Run("collapses same name nearby, first wins", func(t *testing.T) {
		in := []Venue{
			{PlaceID: "a", Name: "Stogie's", Latitude: 29.7604, Longitude: -95.3698, Rating: 4.8},
			{PlaceID: "b", Name: "STOGIE'S", Latitude: 29.76041, Longitude: -95.36979, Rating: 4.2},
		}

		out := Dedupe(in)

		require.Len(t, out, 1)
		assert.Equal(t, "a", out[0].PlaceID)
	})

	t.Run("keeps same name in different locations", func(t *testing.T) {
		in := []Venue{
			{Name: "Casa del Habano", Latitude: 40.71, Longitude: -74.00},
			{Name: "Casa del Habano", Latitude: 25.76, Longitude: -80.19},
		}

		assert.Len(t, Dedupe(in), 2)
	})

	t.Run("handles empty input", func(t *testing.T) {
		assert.Empty(t, Dedupe(nil))
	})
}
