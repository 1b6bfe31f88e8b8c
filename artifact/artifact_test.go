package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"

	"github.com/cjvogel/ramcal/chain"
)

func TestValue(tst *testing.T) {
	path := filepath.Join(tst.TempDir(), "acceptance_rate.csv")
	if err := WriteValue(path, "acceptance_rate", 0.2341); err != nil {
		tst.Fatal("Error: ", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if string(data) != "acceptance_rate\n0.2341\n" {
		tst.Error("Unexpected file contents: ", string(data))
	}
}

func TestNamedValues(tst *testing.T) {
	path := filepath.Join(tst.TempDir(), "posterior_mean.csv")
	names := []string{"S", "kappa"}
	if err := WriteNamedValues(path, "mean", names, []float64{3.1, 0.7}); err != nil {
		tst.Fatal("Error: ", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	want := "parameter,mean\nS,3.1\nkappa,0.7\n"
	if string(data) != want {
		tst.Error("Unexpected file contents: ", string(data))
	}

	if err := WriteNamedValues(path, "mean", names, []float64{1}); err == nil {
		tst.Error("Expected error for mismatched lengths")
	}
}

func TestNamedMatrix(tst *testing.T) {
	path := filepath.Join(tst.TempDir(), "posterior_correlations.csv")
	names := []string{"a", "b"}
	m := mat64.NewSymDense(2, []float64{1, 0.5, 0.5, 1})
	if err := WriteNamedMatrix(path, names, m); err != nil {
		tst.Fatal("Error: ", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	want := "parameter,a,b\na,1,0.5\nb,0.5,1\n"
	if string(data) != want {
		tst.Error("Unexpected file contents: ", string(data))
	}

	if err := WriteNamedMatrix(path, []string{"a"}, m); err == nil {
		tst.Error("Expected error for mismatched names")
	}
}

func TestQuantiles(tst *testing.T) {
	path := filepath.Join(tst.TempDir(), "posterior_quantiles.csv")
	q := mat64.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	names := []string{"a", "b"}
	probs := []float64{0.05, 0.5, 0.95}
	if err := WriteQuantiles(path, names, probs, q); err != nil {
		tst.Fatal("Error: ", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	want := "parameter,q0.05,q0.5,q0.95\na,1,2,3\nb,4,5,6\n"
	if string(data) != want {
		tst.Error("Unexpected file contents: ", string(data))
	}
}

func TestChainRoundTrip(tst *testing.T) {
	path := filepath.Join(tst.TempDir(), "parameters_3.csv")
	c := chain.FromRows([][]float64{
		{0.1, 1.0 / 3},
		{-2.5, 1e-17},
		{3, 4},
	})
	names := []string{"S", "kappa"}
	if err := WriteChain(path, names, c); err != nil {
		tst.Fatal("Error: ", err)
	}

	gotNames, got, err := ReadChain(path)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(gotNames) != 2 || gotNames[0] != "S" || gotNames[1] != "kappa" {
		tst.Error("Unexpected names: ", gotNames)
	}
	if got.Len() != c.Len() || got.Dim() != c.Dim() {
		tst.Fatal("Expected ", c.Len(), "x", c.Dim(), ", got", got.Len(), "x", got.Dim())
	}
	for i := 0; i < c.Len(); i++ {
		for j := 0; j < c.Dim(); j++ {
			if got.Row(i)[j] != c.Row(i)[j] {
				tst.Error("Expected exact round trip at ", i, j)
			}
		}
	}

	if err := WriteChain(path, []string{"S"}, c); err == nil {
		tst.Error("Expected error for mismatched names")
	}
}

func TestReadSeries(tst *testing.T) {
	dir := tst.TempDir()

	path := filepath.Join(dir, "obs.csv")
	contents := "year,temperature\n1900,0.1\n1901,0.15\n1902,-0.05\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		tst.Fatal("Error: ", err)
	}
	years, vals, err := ReadSeries(path)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(years) != 3 || years[0] != 1900 || years[2] != 1902 {
		tst.Error("Unexpected years: ", years)
	}
	if vals[1] != 0.15 {
		tst.Error("Unexpected values: ", vals)
	}

	// headerless file
	bare := filepath.Join(dir, "bare.csv")
	if err := os.WriteFile(bare, []byte("1900,0.1\n1901,0.2\n"), 0644); err != nil {
		tst.Fatal("Error: ", err)
	}
	years, _, err = ReadSeries(bare)
	if err != nil || len(years) != 2 {
		tst.Error("Expected 2 rows, got", len(years), " error ", err)
	}

	// bad record past the header
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("1900,0.1\n1901,oops\n"), 0644); err != nil {
		tst.Fatal("Error: ", err)
	}
	if _, _, err := ReadSeries(bad); err == nil {
		tst.Error("Expected error for a bad record")
	}

	if _, _, err := ReadSeries(filepath.Join(dir, "missing.csv")); err == nil {
		tst.Error("Expected error for a missing file")
	}
}
