package dataset

import (
	"bufio"
	"fmt"
	"os"
)

// SaveText writes values as a plain whitespace-delimited numeric text
// file, one value per line. This is the only on-disk artifact the
// workflow produces.
func SaveText(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "%.18e\n", v); err != nil {
			f.Close()
			return fmt.Errorf("dataset: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("dataset: %w", err)
	}
	return f.Close()
}
