package led

import (
	"bytes"
	"testing"
)

func TestRGBColorUnmarshalText(t *testing.T) {
	var c RGBColor
	if err := c.UnmarshalText([]byte("#19ff19")); err != nil {
		t.Fatalf("failed to parse color: %v", err)
	}
	if (c != RGBColor{0x19, 0xff, 0x19}) {
		t.Errorf("got %v, want #19ff19", c)
	}

	if err := c.UnmarshalText([]byte("not a color")); err == nil {
		t.Error("expected an error for a malformed color")
	}
}

func TestRGBColorString(t *testing.T) {
	c := RGBColor{0xff, 0x19, 0x19}
	if got := c.String(); got != "#ff1919" {
		t.Errorf("got %q, want #ff1919", got)
	}
}

func TestMatrix(t *testing.T) {
	m := NewMatrix(2, 3)

	if m.Rows() != 2 || m.Cols() != 3 {
		t.Fatalf("expected 2x3 matrix, got %dx%d", m.Rows(), m.Cols())
	}

	red := RGBColor{255, 0, 0}
	m.SetColorAt(1, 2, red)

	if got := m.At(1, 2); got != red {
		t.Errorf("At(1,2) = %v, want %v", got, red)
	}
	if got := m.At(0, 0); (got != RGBColor{}) {
		t.Errorf("At(0,0) = %v, want black", got)
	}

	// Row-major: (1,2) is the last LED, so its channels are the last three
	// bytes of the pixel view.
	pix := m.AsPixels()
	if len(pix) != 18 {
		t.Fatalf("expected 18 pixel bytes, got %d", len(pix))
	}
	if !bytes.Equal(pix[15:], []byte{255, 0, 0}) {
		t.Errorf("pixel bytes for (1,2) = %v, want [255 0 0]", pix[15:])
	}
}

func TestMatrixWriteTo(t *testing.T) {
	m := NewMatrix(1, 2)
	m.SetColorAt(0, 1, RGBColor{1, 2, 3})

	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 bytes written, got %d", n)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 1, 2, 3}) {
		t.Errorf("unexpected bytes: %v", buf.Bytes())
	}
}
