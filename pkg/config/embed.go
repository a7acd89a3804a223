package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/defaults.yml
var defaultProfile []byte

// GetDefaultsContent returns the annotated built-in defaults
func GetDefaultsContent() string {
	return string(defaultProfile)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
