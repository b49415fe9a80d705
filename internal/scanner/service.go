// internal/scanner/service.go
// Cigar band identification: Vision labels confirm the photo shows a cigar,
// detected band text is matched against cigars the community has reviewed.

package scanner

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
)

// Common errors
var (
	ErrScannerUnavailable = errors.New("cigar scanner is not configured")
	ErrNotACigar          = errors.New("image does not appear to show a cigar")
)

const (
	// maxImageBytes caps scanner uploads at 8MB
	maxImageBytes = 8 << 20

	// cigarLabelMinScore is the label confidence below which a cigar-ish
	// label is ignored.
	cigarLabelMinScore = 0.6

	maxCandidates = 5
)

var cigarLabels = []string{"cigar", "tobacco", "tobacco products", "cigarillo"}

// Match is one identification candidate with a 0-1 confidence
type Match struct {
	CigarName  string  `json:"cigar_name"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of one scan
type Result struct {
	Matches []Match `json:"matches"`
	Labels  []Label `json:"labels,omitempty"`
}

// CigarNameSource lists known cigar names to match band text against
type CigarNameSource interface {
	ListCigarNames(ctx context.Context) ([]string, error)
}

// Service identifies cigars from band photos
type Service struct {
	vision VisionClient
	names  CigarNameSource
}

// NewService creates a scanner service. vision may be nil, in which case
// every scan fails with ErrScannerUnavailable.
func NewService(vision VisionClient, names CigarNameSource) *Service {
	return &Service{vision: vision, names: names}
}

// Identify analyzes a band photo and returns candidate cigar names ranked by
// confidence. The photo must actually show a cigar per the label detector.
// When the vision call fails and the caller supplied a text hint, the hint is
// matched against known cigars instead of the band text.
func (s *Service) Identify(ctx context.Context, image io.Reader, hint string) (*Result, error) {
	if s.vision == nil {
		return nil, ErrScannerUnavailable
	}

	data, err := io.ReadAll(io.LimitReader(image, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, errors.New("image exceeds maximum size of 8MB")
	}

	annotation, err := s.vision.Annotate(ctx, data)
	if err != nil {
		if strings.TrimSpace(hint) != "" {
			return s.matchHint(ctx, hint)
		}
		return nil, err
	}

	if !showsCigar(annotation.Labels) {
		return nil, ErrNotACigar
	}

	known, err := s.names.ListCigarNames(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		Matches: MatchBandText(annotation.Text, known),
		Labels:  annotation.Labels,
	}, nil
}

func (s *Service) matchHint(ctx context.Context, hint string) (*Result, error) {
	known, err := s.names.ListCigarNames(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Matches: MatchBandText(hint, known)}, nil
}

// MatchBandText scores known cigar names against the text detected on a
// band. A name scores by the fraction of its words found in the text; names
// with no word overlap are dropped.
func MatchBandText(text string, known []string) []Match {
	words := tokenize(text)
	if len(words) == 0 {
		return []Match{}
	}

	matches := []Match{}
	for _, name := range known {
		nameWords := strings.Fields(strings.ToLower(name))
		if len(nameWords) == 0 {
			continue
		}

		hits := 0
		for _, w := range nameWords {
			if _, ok := words[trimWord(w)]; ok {
				hits++
			}
		}
		if hits == 0 {
			continue
		}

		matches = append(matches, Match{
			CigarName:  name,
			Confidence: float64(hits) / float64(len(nameWords)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > maxCandidates {
		matches = matches[:maxCandidates]
	}
	return matches
}

func showsCigar(labels []Label) bool {
	for _, l := range labels {
		if l.Score < cigarLabelMinScore {
			continue
		}
		desc := strings.ToLower(l.Description)
		for _, want := range cigarLabels {
			if desc == want {
				return true
			}
		}
	}
	return false
}

func tokenize(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[trimWord(w)] = struct{}{}
	}
	return words
}

func trimWord(w string) string {
	return strings.Trim(w, ".,;:!?\"'()")
}
