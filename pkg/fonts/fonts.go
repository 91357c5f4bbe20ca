// Package fonts locates the typefaces used for poster labels.
//
// Roboto is preferred and looked up first in explicit directories, then
// among the system fonts. When it is not installed the Go fonts compiled
// into the binary are used instead, so text rendering never fails for lack
// of a font. Text containing CJK characters is drawn with a system CJK
// font when one can be found.
package fonts

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a face within the family.
type Weight int

const (
	Light Weight = iota
	Regular
	Bold
)

func (w Weight) String() string {
	switch w {
	case Light:
		return "Light"
	case Bold:
		return "Bold"
	default:
		return "Regular"
	}
}

// Family names used in SVG output.
const (
	RobotoFamily   = "Roboto"
	GoFamily       = "Go"
	FallbackFamily = "Roboto, sans-serif"
)

// cjkCandidates are TrueType files known to cover CJK ideographs. Font
// collections (.ttc) and CFF fonts cannot be parsed and are not listed.
var cjkCandidates = []string{
	"NotoSansSC-Regular.ttf",
	"NotoSansJP-Regular.ttf",
	"NotoSansKR-Regular.ttf",
	"NotoSansTC-Regular.ttf",
	"DroidSansFallbackFull.ttf",
	"DroidSansFallback.ttf",
	"NanumGothic.ttf",
	"ipag.ttf",
	"simhei.ttf",
}

type face struct {
	data []byte
	font *truetype.Font
}

// Set is a parsed font family with one face per weight.
type Set struct {
	family string
	faces  map[Weight]face

	cjkOnce sync.Once
	cjk     *face

	b64Mu sync.Mutex
	b64   map[Weight]string
}

// Discover returns the Roboto family if every weight can be found in dirs
// or among the system fonts, and the embedded Go fonts otherwise.
func Discover(dirs ...string) *Set {
	if s, ok := discoverRoboto(dirs); ok {
		return s
	}
	return Default()
}

func discoverRoboto(dirs []string) (*Set, bool) {
	faces := make(map[Weight]face, 3)
	for _, w := range []Weight{Light, Regular, Bold} {
		f, ok := loadNamed("Roboto-"+w.String()+".ttf", dirs)
		if !ok {
			return nil, false
		}
		faces[w] = f
	}
	return &Set{family: RobotoFamily, faces: faces}, true
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the embedded Go font family. Light shares the regular face.
func Default() *Set {
	defaultOnce.Do(func() {
		regular := face{data: goregular.TTF, font: mustParse(goregular.TTF)}
		bold := face{data: gobold.TTF, font: mustParse(gobold.TTF)}
		defaultSet = &Set{
			family: GoFamily,
			faces:  map[Weight]face{Light: regular, Regular: regular, Bold: bold},
		}
	})
	return defaultSet
}

func mustParse(data []byte) *truetype.Font {
	f, err := truetype.Parse(data)
	if err != nil {
		panic("fonts: embedded font: " + err.Error())
	}
	return f
}

func loadNamed(name string, dirs []string) (face, bool) {
	var paths []string
	for _, d := range dirs {
		if d != "" {
			paths = append(paths, filepath.Join(d, name))
		}
	}
	if p, err := findfont.Find(name); err == nil {
		paths = append(paths, p)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			continue
		}
		return face{data: data, font: f}, true
	}
	return face{}, false
}

// Family returns the family name, "Roboto" or "Go".
func (s *Set) Family() string { return s.family }

// Font returns the parsed font for w.
func (s *Set) Font(w Weight) *truetype.Font {
	return s.faces[w].font
}

// Data returns the raw TTF bytes for w.
func (s *Set) Data(w Weight) []byte {
	return s.faces[w].data
}

// Base64 returns the TTF bytes for w base64-encoded. The result is cached.
func (s *Set) Base64(w Weight) string {
	s.b64Mu.Lock()
	defer s.b64Mu.Unlock()
	if v, ok := s.b64[w]; ok {
		return v
	}
	if s.b64 == nil {
		s.b64 = make(map[Weight]string, 3)
	}
	v := base64.StdEncoding.EncodeToString(s.faces[w].data)
	s.b64[w] = v
	return v
}

// FontFor returns the font to draw text with. CJK text uses a system CJK
// font when available; otherwise the family face for w is returned.
func (s *Set) FontFor(text string, w Weight) *truetype.Font {
	if HasCJK(text) {
		s.cjkOnce.Do(func() {
			for _, name := range cjkCandidates {
				if f, ok := loadNamed(name, nil); ok {
					s.cjk = &f
					return
				}
			}
		})
		if s.cjk != nil {
			return s.cjk.font
		}
	}
	return s.Font(w)
}

// Face returns a drawing face for text at size pixels.
func (s *Set) Face(text string, w Weight, size float64) font.Face {
	return truetype.NewFace(s.FontFor(text, w), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// HasCJK reports whether text contains Chinese, Japanese or Korean
// characters.
func HasCJK(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
	}
	return false
}
