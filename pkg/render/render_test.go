package render

import (
	"bytes"
	"testing"

	"gonum.org/v1/gonum/mat"

	"qzft/pkg/field"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testFields(t *testing.T, alpha float64) (*field.Grid, *mat.Dense, *field.DerivedFields) {
	t.Helper()
	g, err := field.NewGrid(field.Region{ReMin: 0.4, ReMax: 0.6, ImMin: 0, ImMax: 2, Step: 0.1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	rows, cols := g.Dims()
	mag := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			mag.Set(i, j, 0.5+float64(i+j)*0.05)
		}
	}
	df, err := field.Derive(mag, g.Sigma, alpha)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return g, mag, df
}

func TestWritePNG(t *testing.T) {
	g, mag, df := testFields(t, 1.0)
	zeros := []field.ZeroCandidate{{Sigma: 0.5, T: 1.0, Magnitude: 0.05}}

	var buf bytes.Buffer
	if err := WritePNG(&buf, g, mag, df, zeros, Options{}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if buf.Len() < len(pngMagic) || !bytes.Equal(buf.Bytes()[:len(pngMagic)], pngMagic) {
		t.Fatal("output does not start with the PNG signature")
	}
}

func TestWritePNGUniformField(t *testing.T) {
	// alpha=0 makes the collapse panel identically zero; the heat map must
	// still render instead of dividing by a zero color range.
	g, mag, df := testFields(t, 0)

	var buf bytes.Buffer
	if err := WritePNG(&buf, g, mag, df, nil, Options{}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output does not start with the PNG signature")
	}
}
