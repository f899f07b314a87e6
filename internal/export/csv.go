// Package export writes analysis rows as downloadable CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/moznion/go-optional"

	"StockLens/internal/model"
)

var header = []string{"Date", "Close", "SMA20", "RSI"}

// FileName is the download name for a symbol's export.
func FileName(symbol string) string {
	return symbol + "_data.csv"
}

// WriteCSV writes one row per bar of a. Undefined indicator values are empty cells.
func WriteCSV(w io.Writer, a *model.Analysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range a.Rows() {
		rec := []string{
			row.Time.Format("2006-01-02"),
			formatFloat(row.Close),
			formatOptional(row.SMA),
			formatOptional(row.RSI),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes a FileName(symbol) file into dir for every analysis and
// returns the paths written.
func WriteDir(dir string, analyses []*model.Analysis) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	paths := make([]string, 0, len(analyses))
	for _, a := range analyses {
		path := filepath.Join(dir, FileName(a.Symbol))
		if err := writeFile(path, a); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, a *model.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, a); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v optional.Option[float64]) string {
	if v.IsNone() {
		return ""
	}
	return formatFloat(v.Unwrap())
}
