package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a sheet definition. Unknown keys are rejected and an
// empty document yields an empty definition.
func ParseYAML(r io.Reader) (*Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return &d, nil
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return &d, nil
}

// WriteYAML encodes the definition.
func (d *Definition) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
