// internal/venues/service.go
// Cigar venue search: provider query, relevance filter, dedupe, Redis cache.

package venues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSearchUnavailable is returned when no places provider is configured
var ErrSearchUnavailable = errors.New("venue search is not configured")

// cigarKeywords mark a result as cigar-relevant when found in its name or
// place types.
var cigarKeywords = []string{
	"cigar", "tobacco", "smoke", "humidor", "lounge", "tobacconist",
}

// categoryKeywords narrow results when the caller asks for a category.
var categoryKeywords = map[string][]string{
	"lounge": {"lounge", "bar", "club"},
	"shop":   {"shop", "store", "tobacconist", "retail"},
}

// Service provides cigar venue search with short-lived response caching
type Service struct {
	places   PlacesClient
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewService creates a venues service. places and redis may each be nil:
// without places every search fails with ErrSearchUnavailable, without redis
// results are simply not cached.
func NewService(places PlacesClient, redisClient *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{places: places, redis: redisClient, cacheTTL: cacheTTL}
}

// Search finds cigar-friendly venues matching the query, optionally scoped
// to a city, biased toward a coordinate, and narrowed to a category. Provider
// responses are filtered to cigar-relevant places and deduplicated; the final
// list is cached.
func (s *Service) Search(ctx context.Context, req *SearchRequest) ([]Venue, error) {
	if s.places == nil {
		return nil, ErrSearchUnavailable
	}

	query := strings.TrimSpace(req.Query)
	if req.City != "" {
		query = fmt.Sprintf("%s in %s", query, strings.TrimSpace(req.City))
	}

	var bias *LocationBias
	if req.Lat != nil && req.Lng != nil {
		bias = &LocationBias{Lat: *req.Lat, Lng: *req.Lng}
	}

	cacheKey := searchCacheKey(query, bias, req.Category)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	// Bias the provider toward cigar results without requiring the caller
	// to type the word.
	providerQuery := query
	if !containsCigarKeyword(strings.ToLower(query)) {
		providerQuery = "cigar " + query
	}

	results, err := s.places.SearchText(ctx, providerQuery, bias)
	if err != nil {
		return nil, err
	}

	venues := Dedupe(FilterCigarRelevant(results))
	if req.Category != "" {
		venues = FilterCategory(venues, req.Category)
	}
	s.toCache(ctx, cacheKey, venues)
	return venues, nil
}

// searchCacheKey includes the bias coordinates (rounded, so nearby callers
// share entries) and category so narrowed searches never serve broader
// cached results.
func searchCacheKey(query string, bias *LocationBias, category string) string {
	key := "venues:search:" + strings.ToLower(query)
	if bias != nil {
		key += fmt.Sprintf(":%.3f,%.3f", roundCoord(bias.Lat), roundCoord(bias.Lng))
	}
	if category != "" {
		key += ":" + category
	}
	return key
}

// FilterCategory keeps venues whose name or place types mention a keyword of
// the requested category. Unknown categories pass everything through.
func FilterCategory(in []Venue, category string) []Venue {
	keywords, ok := categoryKeywords[category]
	if !ok {
		return in
	}

	out := make([]Venue, 0, len(in))
	for _, v := range in {
		haystack := venueHaystack(v)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// FilterCigarRelevant keeps venues whose name or place types mention a cigar
// keyword.
func FilterCigarRelevant(in []Venue) []Venue {
	out := make([]Venue, 0, len(in))
	for _, v := range in {
		if isCigarRelevant(v) {
			out = append(out, v)
		}
	}
	return out
}

// Dedupe collapses venues sharing a normalized name and a location rounded
// to ~100m. Providers frequently return the same lounge twice under slightly
// different listings; the first occurrence wins.
func Dedupe(in []Venue) []Venue {
	seen := make(map[string]struct{}, len(in))
	out := make([]Venue, 0, len(in))

	for _, v := range in {
		key := fmt.Sprintf("%s|%.3f|%.3f",
			normalizeName(v.Name),
			roundCoord(v.Latitude),
			roundCoord(v.Longitude))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func isCigarRelevant(v Venue) bool {
	return containsCigarKeyword(venueHaystack(v))
}

func venueHaystack(v Venue) string {
	haystack := strings.ToLower(v.Name)
	for _, t := range v.Types {
		haystack += " " + strings.ToLower(t)
	}
	return haystack
}

func containsCigarKeyword(haystack string) bool {
	for _, kw := range cigarKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func roundCoord(c float64) float64 {
	return math.Round(c*1000) / 1000
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Venue, bool) {
	if s.redis == nil {
		return nil, false
	}

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var venues []Venue
	if err := json.Unmarshal(data, &venues); err != nil {
		return nil, false
	}
	return venues, true
}

func (s *Service) toCache(ctx context.Context, key string, venues []Venue) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(venues)
	if err != nil {
		return
	}
	s.redis.Set(ctx, key, data, s.cacheTTL)
}
