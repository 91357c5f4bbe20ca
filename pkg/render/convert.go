package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	perrors "github.com/kronpano/city-map-poster/pkg/errors"
)

// Converter is the external tool used for format conversion.
const Converter = "rsvg-convert"

// Available reports whether the converter is installed.
func Available() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

// ToPDF converts SVG bytes to PDF. dpi is the resolution the SVG was laid
// out at; at 72 the SVG user units become PDF points one to one.
func ToPDF(ctx context.Context, svg []byte, dpi float64) ([]byte, error) {
	d := strconv.FormatFloat(dpi, 'f', -1, 64)
	return rsvgConvert(ctx, svg, "pdf", "-d", d, "-p", d)
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !Available() {
		return nil, perrors.New(perrors.ErrCodeUnsupported,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, Converter, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeRender, fmt.Errorf("%v: %s", err, errBuf.String()), "rsvg-convert")
	}
	return out.Bytes(), nil
}
