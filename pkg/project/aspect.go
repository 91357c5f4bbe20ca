package project

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

// LongSideInches is the printed length of a poster's longer side.
const LongSideInches = 16.0

// AspectRatio is a unit-agnostic width:height ratio.
type AspectRatio struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ParseAspectRatio parses "w:h", e.g. "16:9" or "1:1".
func ParseAspectRatio(s string) (AspectRatio, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return AspectRatio{}, perrors.New(perrors.ErrCodeInvalidRatio,
			"invalid aspect ratio %q: use width:height, e.g. 16:9", s)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil {
		return AspectRatio{}, perrors.New(perrors.ErrCodeInvalidRatio,
			"invalid aspect ratio %q: both sides must be numbers", s)
	}
	r := AspectRatio{W: w, H: h}
	if err := r.Validate(); err != nil {
		return AspectRatio{}, err
	}
	return r, nil
}

// Validate checks that both sides are finite and positive.
func (r AspectRatio) Validate() error {
	for _, v := range []float64{r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return perrors.New(perrors.ErrCodeInvalidRatio, "aspect ratio sides must be positive, got %v:%v", r.W, r.H)
		}
	}
	return nil
}

// Value returns W/H.
func (r AspectRatio) Value() float64 { return r.W / r.H }

func (r AspectRatio) String() string {
	return fmt.Sprintf("%s:%s", strconv.FormatFloat(r.W, 'f', -1, 64), strconv.FormatFloat(r.H, 'f', -1, 64))
}

// Inches returns the printed size with the long side at LongSideInches.
func (r AspectRatio) Inches() (width, height float64) {
	if r.W >= r.H {
		return LongSideInches, LongSideInches * r.H / r.W
	}
	return LongSideInches * r.W / r.H, LongSideInches
}

// Canvas returns the pixel size at dpi, rounded to whole pixels.
func (r AspectRatio) Canvas(dpi float64) (width, height int) {
	w, h := r.Inches()
	return max(int(math.Round(w*dpi)), 1), max(int(math.Round(h*dpi)), 1)
}
