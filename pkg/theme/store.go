package theme

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

//go:embed themes/*
var builtin embed.FS

// Store resolves theme names against a user directory and the built-in set.
// A file in the user directory shadows a built-in theme of the same name.
type Store struct {
	sources []fs.FS
}

// NewStore creates a store. dir may be empty to use only built-in themes;
// a non-existent dir is ignored.
func NewStore(dir string) *Store {
	s := &Store{}
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.sources = append(s.sources, os.DirFS(dir))
		}
	}
	sub, _ := fs.Sub(builtin, "themes")
	s.sources = append(s.sources, sub)
	return s
}

// newStoreFS creates a store over explicit file systems, highest priority first.
func newStoreFS(sources ...fs.FS) *Store {
	return &Store{sources: sources}
}

// extensions lists supported file extensions in lookup priority order.
var extensions = []struct {
	ext    string
	format Format
}{
	{".json", FormatJSON},
	{".toml", FormatTOML},
}

func formatFor(ext string) (Format, bool) {
	for _, e := range extensions {
		if e.ext == ext {
			return e.format, true
		}
	}
	return "", false
}

// Names returns every available theme name, sorted.
func (s *Store) Names() []string {
	seen := map[string]bool{}
	for _, src := range s.sources {
		entries, err := fs.ReadDir(src, ".")
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := path.Ext(e.Name())
			if _, ok := formatFor(ext); !ok {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), ext)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load returns the named theme. If no file exists for name, the fallback
// theme is returned with fallback=true. Invalid files are errors.
func (s *Store) Load(name string) (t Theme, fallback bool, err error) {
	if err := perrors.ValidateThemeName(name); err != nil {
		return Theme{}, false, err
	}
	for _, src := range s.sources {
		for _, e := range extensions {
			data, err := fs.ReadFile(src, name+e.ext)
			if err != nil {
				continue
			}
			t, err := Parse(name, data, e.format)
			return t, false, err
		}
	}
	return Fallback(), true, nil
}

// Resolve expands a theme selector into theme names. "all" selects every
// available theme; otherwise the value is a comma-separated list.
func (s *Store) Resolve(selector string) ([]string, error) {
	selector = strings.TrimSpace(selector)
	if strings.EqualFold(selector, "all") {
		names := s.Names()
		if len(names) == 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidTheme, "no themes available")
		}
		return names, nil
	}

	var out []string
	seen := map[string]bool{}
	for _, n := range strings.Split(selector, ",") {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		if err := perrors.ValidateThemeName(n); err != nil {
			return nil, err
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidTheme, "no theme selected")
	}
	return out, nil
}

// Info is a summary of a theme for listings.
type Info struct {
	ID          string
	Name        string
	Description string
	Theme       Theme
	Err         error
}

// List loads every available theme. Broken files are reported per entry.
func (s *Store) List() []Info {
	names := s.Names()
	infos := make([]Info, 0, len(names))
	for _, n := range names {
		t, _, err := s.Load(n)
		name := t.DisplayName()
		if err != nil {
			name = n
		}
		infos = append(infos, Info{
			ID:          n,
			Name:        name,
			Description: t.Description,
			Theme:       t,
			Err:         err,
		})
	}
	return infos
}
