// Package artifact reads and writes the CSV files produced by a
// calibration run: acceptance rate, proposal covariance, posterior
// summaries and thinned chains.
package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gonum/matrix/mat64"

	"github.com/cjvogel/ramcal/chain"
)

// formatFloat renders a value so it parses back to the same float.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAll(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteValue writes a single labelled value, e.g. the acceptance rate.
func WriteValue(path, label string, value float64) error {
	return writeAll(path, [][]string{{label}, {formatFloat(value)}})
}

// WriteNamedValues writes one labelled value per parameter, e.g. the
// posterior mean.
func WriteNamedValues(path, label string, names []string, values []float64) error {
	if len(names) != len(values) {
		return fmt.Errorf("artifact: %d names for %d values", len(names), len(values))
	}
	records := make([][]string, 0, len(values)+1)
	records = append(records, []string{"parameter", label})
	for i, v := range values {
		records = append(records, []string{names[i], formatFloat(v)})
	}
	return writeAll(path, records)
}

// WriteNamedMatrix writes a square matrix with the parameter names on
// both axes, e.g. the proposal covariance or the posterior
// correlations.
func WriteNamedMatrix(path string, names []string, m mat64.Matrix) error {
	r, c := m.Dims()
	if r != c || r != len(names) {
		return fmt.Errorf("artifact: %d names for a %dx%d matrix", len(names), r, c)
	}
	records := make([][]string, 0, r+1)
	head := make([]string, 0, c+1)
	head = append(head, "parameter")
	head = append(head, names...)
	records = append(records, head)
	for i := 0; i < r; i++ {
		row := make([]string, 0, c+1)
		row = append(row, names[i])
		for j := 0; j < c; j++ {
			row = append(row, formatFloat(m.At(i, j)))
		}
		records = append(records, row)
	}
	return writeAll(path, records)
}

// WriteQuantiles writes one row per parameter with one column per
// probability.
func WriteQuantiles(path string, names []string, probs []float64, q *mat64.Dense) error {
	r, c := q.Dims()
	if r != len(names) || c != len(probs) {
		return fmt.Errorf("artifact: %d names and %d probabilities for a %dx%d table",
			len(names), len(probs), r, c)
	}
	records := make([][]string, 0, r+1)
	head := make([]string, 0, c+1)
	head = append(head, "parameter")
	for _, p := range probs {
		head = append(head, "q"+formatFloat(p))
	}
	records = append(records, head)
	for i := 0; i < r; i++ {
		row := make([]string, 0, c+1)
		row = append(row, names[i])
		for j := 0; j < c; j++ {
			row = append(row, formatFloat(q.At(i, j)))
		}
		records = append(records, row)
	}
	return writeAll(path, records)
}

// WriteChain writes samples with a parameter-name header row.
func WriteChain(path string, names []string, c *chain.Chain) error {
	if len(names) != c.Dim() {
		return fmt.Errorf("artifact: %d names for a chain of dimension %d",
			len(names), c.Dim())
	}
	records := make([][]string, 0, c.Len()+1)
	records = append(records, append([]string(nil), names...))
	for i := 0; i < c.Len(); i++ {
		row := c.Row(i)
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatFloat(v)
		}
		records = append(records, rec)
	}
	return writeAll(path, records)
}

// ReadChain reads a chain written by WriteChain, returning the
// parameter names and the samples.
func ReadChain(path string) ([]string, *chain.Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: reading %s: %v", path, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("artifact: %s holds no samples", path)
	}
	names := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(names) {
			return nil, nil, fmt.Errorf("artifact: %s line %d: %d fields, expected %d",
				path, i+2, len(rec), len(names))
		}
		row := make([]float64, len(rec))
		for j, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("artifact: %s line %d: %v", path, i+2, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return names, chain.FromRows(rows), nil
}

// ReadSeries reads a two-column (year, value) CSV, skipping a header
// row when present.
func ReadSeries(path string) ([]int, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: reading %s: %v", path, err)
	}
	var years []int
	var vals []float64
	for i, rec := range records {
		if len(rec) != 2 {
			return nil, nil, fmt.Errorf("artifact: %s line %d: %d fields, expected 2",
				path, i+1, len(rec))
		}
		y, yerr := strconv.Atoi(strings.TrimSpace(rec[0]))
		v, verr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if yerr != nil || verr != nil {
			if i == 0 {
				continue
			}
			return nil, nil, fmt.Errorf("artifact: %s line %d: bad record %v", path, i+1, rec)
		}
		years = append(years, y)
		vals = append(vals, v)
	}
	if len(years) == 0 {
		return nil, nil, fmt.Errorf("artifact: %s holds no data", path)
	}
	return years, vals, nil
}
