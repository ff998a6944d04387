// Package led provides the color and frame buffer types shared by keyglow.
package led

import (
	"encoding"
	"fmt"
	"io"
	"unsafe"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor is a 24-bit color in red, green, blue channel order.
type RGBColor [3]uint8

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = (*RGBColor)(nil)
)

// RGB returns a color from its three channels.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b}
}

// UnmarshalText parses a "#rrggbb" hex string.
func (c *RGBColor) UnmarshalText(text []byte) error {
	parsed, err := colorful.Hex(string(text))
	if err != nil {
		return err
	}
	r, g, b := parsed.RGB255()
	*c = RGBColor{r, g, b}
	return nil
}

func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c RGBColor) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Matrix is a preallocated frame buffer for a keyboard LED matrix.
// Cells are stored row-major.
type Matrix struct {
	pix  []RGBColor
	rows int
	cols int
}

// NewMatrix creates a new matrix frame buffer. Colors are initialized to black
// (off).
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{
		pix:  make([]RGBColor, rows*cols),
		rows: rows,
		cols: cols,
	}
}

// Rows returns the number of rows in the matrix.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns in the matrix.
func (m *Matrix) Cols() int { return m.cols }

// SetColorAt sets the color of the LED at the given position.
func (m *Matrix) SetColorAt(row, col int, c RGBColor) {
	m.pix[row*m.cols+col] = c
}

// At returns the color of the LED at the given position.
func (m *Matrix) At(row, col int) RGBColor {
	return m.pix[row*m.cols+col]
}

// Fill sets every LED in the matrix to the given color.
func (m *Matrix) Fill(c RGBColor) {
	for i := range m.pix {
		m.pix[i] = c
	}
}

// AsPixels returns the frame buffer as a flat slice of uint8 values. Each LED
// is represented by three values, one for each color channel.
func (m *Matrix) AsPixels() []uint8 {
	return unsafe.Slice((*uint8)(unsafe.Pointer(&m.pix[0])), 3*len(m.pix))
}

// WriteTo implements io.WriterTo. It writes the frame buffer to the given
// writer as a series of RGBColor values, row-major.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, c := range m.pix {
		n, err := w.Write(c[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
