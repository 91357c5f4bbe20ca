package fonts

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestHasCJK(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Paris", false},
		{"São Paulo", false},
		{"Москва", false},
		{"東京", true},
		{"とうきょう", true},
		{"カタカナ", true},
		{"서울", true},
		{"Tokyo 東京", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasCJK(tt.in); got != tt.want {
			t.Errorf("HasCJK(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.Family() != GoFamily {
		t.Errorf("Family() = %q, want %q", s.Family(), GoFamily)
	}
	for _, w := range []Weight{Light, Regular, Bold} {
		if s.Font(w) == nil {
			t.Errorf("Font(%v) is nil", w)
		}
		if len(s.Data(w)) == 0 {
			t.Errorf("Data(%v) is empty", w)
		}
	}
	if s.Font(Bold) == s.Font(Regular) {
		t.Error("bold and regular should be distinct faces")
	}
	if Default() != s {
		t.Error("Default() should return the same set")
	}
}

func TestBase64(t *testing.T) {
	s := Default()
	enc := s.Base64(Regular)
	dec, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dec) != len(goregular.TTF) {
		t.Errorf("decoded %d bytes, want %d", len(dec), len(goregular.TTF))
	}
	if s.Base64(Regular) != enc {
		t.Error("Base64 should be stable")
	}
}

func TestDiscoverFromDir(t *testing.T) {
	dir := t.TempDir()
	for _, w := range []Weight{Light, Regular, Bold} {
		if err := os.WriteFile(filepath.Join(dir, "Roboto-"+w.String()+".ttf"), goregular.TTF, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s := Discover(dir)
	if s.Family() != RobotoFamily {
		t.Errorf("Discover(dir).Family() = %q, want %q", s.Family(), RobotoFamily)
	}
}

func TestFontForLatin(t *testing.T) {
	s := Default()
	if s.FontFor("Paris", Bold) != s.Font(Bold) {
		t.Error("latin text should use the family face")
	}
	if f := s.Face("Paris", Regular, 24); f == nil {
		t.Error("Face() returned nil")
	}
}
