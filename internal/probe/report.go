package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/hourlyprobe/internal/domain/model"
)

// writeSample prints at most n rows as indented JSON.
func writeSample(w io.Writer, rows []model.Row, n int) error {
	sample := rows[:minInt(len(rows), n)]
	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	return nil
}

// saveRowsToFile writes all rows to filename as a JSON array.
func saveRowsToFile(filename string, rows []model.Row) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
