package export

import (
	"fmt"
	"os"
	"strings"

	"sm-kiosk/internal/format"
	"sm-kiosk/internal/model"
)

// WriteTXT writes human-readable run summaries to a text file.
func WriteTXT(path string, runs []model.Run) error {
	if err := EnsureDir(path); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var b strings.Builder
	for i := range runs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(format.FormatRun(&runs[i]))
	}
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write text file: %w", err)
	}
	return nil
}
