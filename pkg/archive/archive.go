// Package archive persists simulation grids and fields. The binary archive
// is a gzip-wrapped MessagePack document of named float64 arrays; values
// are stored verbatim so a round trip is bit-identical. CSV export mirrors
// the same data as one row per lattice point.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"qzft/pkg/field"
)

// Canonical array names used by the simulator's archives.
const (
	NameSigmaGrid      = "sigma_grid"
	NameTGrid          = "t_grid"
	NameZetaAbs        = "zeta_abs"
	NamePotentialV     = "potential_V"
	NameCollapseC      = "collapse_C"
	NameTotalPotential = "total_potential"
)

// Array is one named matrix, row-major.
type Array struct {
	Rows int       `msgpack:"rows"`
	Cols int       `msgpack:"cols"`
	Data []float64 `msgpack:"data"`
}

// Archive is a set of named arrays.
type Archive struct {
	Version int              `msgpack:"version"`
	Arrays  map[string]Array `msgpack:"arrays"`
}

// New returns an empty archive at the current format version.
func New() *Archive {
	return &Archive{Version: 1, Arrays: make(map[string]Array)}
}

// PutDense stores a matrix under name, copying its backing data.
func (a *Archive) PutDense(name string, m *mat.Dense) {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	a.Arrays[name] = Array{Rows: r, Cols: c, Data: data}
}

// Dense reconstructs the named matrix.
func (a *Archive) Dense(name string) (*mat.Dense, error) {
	arr, ok := a.Arrays[name]
	if !ok {
		return nil, fmt.Errorf("archive: no array named %q", name)
	}
	if len(arr.Data) != arr.Rows*arr.Cols {
		return nil, fmt.Errorf("archive: array %q has %d values for %dx%d shape",
			name, len(arr.Data), arr.Rows, arr.Cols)
	}
	data := make([]float64, len(arr.Data))
	copy(data, arr.Data)
	return mat.NewDense(arr.Rows, arr.Cols, data), nil
}

// FromResult assembles the canonical six-array archive from a finished
// simulation.
func FromResult(g *field.Grid, mag *mat.Dense, df *field.DerivedFields) *Archive {
	a := New()
	a.PutDense(NameSigmaGrid, g.Sigma)
	a.PutDense(NameTGrid, g.T)
	a.PutDense(NameZetaAbs, mag)
	a.PutDense(NamePotentialV, df.Potential)
	a.PutDense(NameCollapseC, df.Collapse)
	a.PutDense(NameTotalPotential, df.Total)
	return a
}

// Write encodes the archive as gzip(msgpack) to w.
func (a *Archive) Write(w io.Writer) error {
	data, err := msgpack.Marshal(a)
	if err != nil {
		return fmt.Errorf("archive: marshal: %w", err)
	}
	gzw := gzip.NewWriter(w)
	if _, err := gzw.Write(data); err != nil {
		return fmt.Errorf("archive: write: %w", err)
	}
	return gzw.Close()
}

// Read decodes an archive from r.
func Read(r io.Reader) (*Archive, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("archive: gzip: %w", err)
	}
	defer gzr.Close()
	data, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("archive: read: %w", err)
	}
	var a Archive
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("archive: unmarshal: %w", err)
	}
	return &a, nil
}

// Save writes the archive to path.
func (a *Archive) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := a.Write(f); err != nil {
		return err
	}
	return f.Close()
}

// Load reads an archive from path.
func Load(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
