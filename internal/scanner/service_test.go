package scanner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVisionClient struct {
	annotation *Annotation
	err        error
}

func (f *fakeVisionClient) Annotate(ctx context.Context, image []byte) (*Annotation, error) {
	return f.annotation, f.err
}

type staticNames []string

func (s staticNames) ListCigarNames(ctx context.Context) ([]string, error) {
	return s, nil
}

func TestIdentify(t *testing.T) {
	ctx := context.Background()
	names := staticNames{"Padron 1964 Anniversary", "Montecristo No. 2", "Cohiba Behike"}

	t.Run("fails without a configured client", func(t *testing.T) {
		service := NewService(nil, names)

		_, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "")

		assert.ErrorIs(t, err, ErrScannerUnavailable)
	})

	t.Run("rejects images without a cigar", func(t *testing.T) {
		vision := &fakeVisionClient{annotation: &Annotation{
			Labels: []Label{{Description: "Dog", Score: 0.98}},
			Text:   "Montecristo",
		}}
		service := NewService(vision, names)

		_, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "")

		assert.ErrorIs(t, err, ErrNotACigar)
	})

	t.Run("ignores low-confidence cigar labels", func(t *testing.T) {
		vision := &fakeVisionClient{annotation: &Annotation{
			Labels: []Label{{Description: "Cigar", Score: 0.3}},
		}}
		service := NewService(vision, names)

		_, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "")

		assert.ErrorIs(t, err, ErrNotACigar)
	})

	t.Run("matches band text against known cigars", func(t *testing.T) {
		vision := &fakeVisionClient{annotation: &Annotation{
			Labels: []Label{{Description: "Cigar", Score: 0.95}},
			Text:   "MONTECRISTO\nNo. 2\nHabana",
		}}
		service := NewService(vision, names)

		result, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "")

		require.NoError(t, err)
		require.NotEmpty(t, result.Matches)
		assert.Equal(t, "Montecristo No. 2", result.Matches[0].CigarName)
		assert.InDelta(t, 1.0, result.Matches[0].Confidence, 0.0001)
	})

	t.Run("returns no matches for unreadable bands", func(t *testing.T) {
		vision := &fakeVisionClient{annotation: &Annotation{
			Labels: []Label{{Description: "Tobacco products", Score: 0.9}},
			Text:   "",
		}}
		service := NewService(vision, names)

		result, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "")

		require.NoError(t, err)
		assert.Empty(t, result.Matches)
	})

	t.Run("falls back to the hint when vision fails", func(t *testing.T) {
		vision := &fakeVisionClient{err: errors.New("vision quota exceeded")}
		service := NewService(vision, names)

		result, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "montecristo no. 2")

		require.NoError(t, err)
		require.NotEmpty(t, result.Matches)
		assert.Equal(t, "Montecristo No. 2", result.Matches[0].CigarName)
		assert.Empty(t, result.Labels)
	})

	t.Run("propagates vision errors without a hint", func(t *testing.T) {
		visionErr := errors.New("vision quota exceeded")
		service := NewService(&fakeVisionClient{err: visionErr}, names)

		_, err := service.Identify(ctx, bytes.NewReader([]byte("jpeg")), "   ")

		assert.ErrorIs(t, err, visionErr)
	})
}

func TestMatchBandText(t *testing.T) {
	known := []string{
		"Padron 1964 Anniversary",
		"Padron 1926 Serie",
		"Oliva Serie V",
	}

	t.Run("ranks fuller matches first", func(t *testing.T) {
		matches := MatchBandText("PADRON 1964 ANNIVERSARY maduro", known)

		require.Len(t, matches, 2)
		assert.Equal(t, "Padron 1964 Anniversary", matches[0].CigarName)
		assert.InDelta(t, 1.0, matches[0].Confidence, 0.0001)
		assert.Greater(t, matches[0].Confidence, matches[1].Confidence)
	})

	t.Run("strips punctuation when tokenizing", func(t *testing.T) {
		matches := MatchBandText("\"Oliva\" Serie, V.", known)

		require.NotEmpty(t, matches)
		assert.Equal(t, "Oliva Serie V", matches[0].CigarName)
		assert.InDelta(t, 1.0, matches[0].Confidence, 0.0001)
	})

	t.Run("drops names with no overlap", func(t *testing.T) {
		matches := MatchBandText("Romeo y Julieta", known)

		assert.Empty(t, matches)
	})

	t.Run("caps the candidate list", func(t *testing.T) {
		many := make([]string, 20)
		for i := range many {
			many[i] = "Padron Reserva"
		}

		assert.Len(t, MatchBandText("padron", many), maxCandidates)
	})

	t.Run("handles empty text", func(t *testing.T) {
		assert.Empty(t, MatchBandText("", known))
	})
}
