// internal/venues/models.go
package venues

// Venue is a cigar-friendly place returned from venue search
type Venue struct {
	PlaceID   string   `json:"place_id,omitempty"`
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Rating    float64  `json:"rating,omitempty"`
	Types     []string `json:"types,omitempty"`
}

// SearchRequest is the parsed venue search input. Lat and Lng are optional
// and bias provider results toward that point; Category narrows results to
// lounges or shops.
type SearchRequest struct {
	Query    string   `validate:"required,max=200"`
	City     string   `validate:"max=100"`
	Lat      *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lng      *float64 `validate:"omitempty,gte=-180,lte=180"`
	Category string   `validate:"omitempty,oneof=lounge shop"`
}
