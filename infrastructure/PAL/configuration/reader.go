package configuration

import (
	"encoding/json"
	"fmt"
	"os"
)

type reader struct {
	path string
}

func newReader(path string) *reader {
	return &reader{
		path: path,
	}
}

func (r *reader) read() (*Configuration, error) {
	var configuration Configuration
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &configuration); err != nil {
		return nil, fmt.Errorf("malformed configuration (%s): %w", r.path, err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", r.path, err)
	}

	return &configuration, nil
}

// Load resolves the configuration path and reads the file it names.
func Load(resolver Resolver) (*Configuration, error) {
	path, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}
	return newReader(path).read()
}
