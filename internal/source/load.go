package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads the sheet file at path, choosing the format by extension.
// A definition without a name is named after the file.
func Load(ctx context.Context, path string) (*Definition, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		d   *Definition
		err error
	)
	switch ext {
	case ".yaml", ".yml":
		d, err = loadYAML(path)
	case ".json":
		d, err = loadJSON(path)
	case ".lua":
		d, err = RunLuaFile(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sheet %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

func loadYAML(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseYAML(f)
}

func loadJSON(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJSON(data, "")
}
