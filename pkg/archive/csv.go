package archive

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"qzft/pkg/field"
)

// CSVHeader is the delimited-text header, one column per field in grid
// scan order.
var CSVHeader = []string{"sigma", "t", "zeta_abs", "potential_V", "collapse_C", "total_potential"}

// WriteCSV emits one row per lattice point in row-major order, with a
// header line.
func WriteCSV(w io.Writer, g *field.Grid, mag *mat.Dense, df *field.DerivedFields) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	rows, cols := mag.Dims()
	rec := make([]string, len(CSVHeader))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rec[0] = formatFloat(g.Sigma.At(i, j))
			rec[1] = formatFloat(g.T.At(i, j))
			rec[2] = formatFloat(mag.At(i, j))
			rec[3] = formatFloat(df.Potential.At(i, j))
			rec[4] = formatFloat(df.Collapse.At(i, j))
			rec[5] = formatFloat(df.Total.At(i, j))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the delimited text file to path.
func SaveCSV(path string, g *field.Grid, mag *mat.Dense, df *field.DerivedFields) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteCSV(f, g, mag, df); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
