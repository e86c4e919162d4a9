// Package clipboard publishes exported designs to the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
)

type format int

const (
	formatText format = iota
	formatImage
)

func (f format) String() string {
	if f == formatImage {
		return "image"
	}
	return "text"
}

// ErrEmpty is returned when the clipboard holds nothing of the requested
// format.
var ErrEmpty = errors.New("clipboard holds no data of the requested format")

// WriteImage encodes img as PNG and publishes it.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("clipboard: encode: %w", err)
	}
	return write(formatImage, buf.Bytes())
}

// ReadImage decodes PNG data from the clipboard.
func ReadImage() (image.Image, error) {
	data, err := readFormat(formatImage)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("clipboard: decode: %w", err)
	}
	return img, nil
}

// WriteText publishes UTF-8 text.
func WriteText(text string) error {
	return write(formatText, []byte(text))
}

// ReadText returns UTF-8 text from the clipboard.
func ReadText() (string, error) {
	data, err := readFormat(formatText)
	if err != nil {
		return "", err
	}
	// Some owners append a NUL to STRING replies.
	return string(bytes.TrimSuffix(data, []byte{0})), nil
}

func readFormat(f format) ([]byte, error) {
	data, err := read(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard %s: %w", f, ErrEmpty)
	}
	return data, nil
}
