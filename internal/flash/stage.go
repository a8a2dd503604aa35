package flash

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Render produces the message file contents: the template with every
// placeholder replaced by message, or the bare message when no template
// file exists.
func Render(cfg Config, message string) ([]byte, error) {
	if cfg.Template == "" {
		return []byte(message + "\n"), nil
	}

	path := resolve(cfg.WorkDir, cfg.Template)
	tmpl, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte(message + "\n"), nil
	}
	if err != nil {
		return nil, &StageError{Path: path, Err: err}
	}
	return []byte(strings.ReplaceAll(string(tmpl), cfg.Placeholder, message)), nil
}

// Stage renders the message and writes it to the configured output file,
// returning the file's path.
func Stage(cfg Config, message string) (string, error) {
	data, err := Render(cfg, message)
	if err != nil {
		return "", err
	}
	path := resolve(cfg.WorkDir, cfg.Output)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &StageError{Path: path, Err: err}
	}
	return path, nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
