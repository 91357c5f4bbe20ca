package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRatio, "invalid ratio: %s", "3:")

	if err.Code != ErrCodeInvalidRatio {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRatio)
	}

	if err.Message != "invalid ratio: 3:" {
		t.Errorf("Message = %v, want %v", err.Message, "invalid ratio: 3:")
	}

	expected := "INVALID_RATIO: invalid ratio: 3:"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeAcquisition, cause, "fetch street network")

	if err.Code != ErrCodeAcquisition {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeAcquisition)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeDegenerate, "flat"), ErrCodeDegenerate, true},
		{"different code", New(ErrCodeDegenerate, "flat"), ErrCodeCache, false},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil error", nil, ErrCodeInternal, false},
		{"wrapped in fmt", wrapFmt(New(ErrCodeGeocode, "x")), ErrCodeGeocode, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %q) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRender, "x")); got != ErrCodeRender {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeRender)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestIsInput(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeInvalidInput, true},
		{ErrCodeInvalidRatio, true},
		{ErrCodeInvalidShift, true},
		{ErrCodeInvalidTheme, true},
		{ErrCodeInvalidFormat, true},
		{ErrCodeInvalidCoordinates, true},
		{ErrCodeAcquisition, false},
		{ErrCodeDegenerate, false},
		{ErrCodeCache, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := IsInput(New(tt.code, "x")); got != tt.want {
				t.Errorf("IsInput(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeInvalidShift, "invalid shift %q", "5x"), `invalid shift "5x"`},
		{"structured with cause", Wrap(ErrCodeGeocode, errors.New("timeout"), "geocode Paris"), "geocode Paris: timeout"},
		{"plain", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if err := Join(nil, nil); err != nil {
		t.Errorf("Join(nil, nil) = %v, want nil", err)
	}
	a := New(ErrCodeRender, "a")
	b := New(ErrCodeRender, "b")
	joined := Join(a, nil, b)
	if !errors.Is(joined, a) || !errors.Is(joined, b) {
		t.Errorf("Join() lost an error: %v", joined)
	}
}

func wrapFmt(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "context: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }
