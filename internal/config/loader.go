package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load reads a description and maps it into a Plan. Files ending in
// .json or .jsonc are JSON with comments, everything else is YAML.
func Load(path string) (*Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpError{
			Op:   "config.load",
			Kind: KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	dto, err := Decode(path, b)
	if err != nil {
		return nil, err
	}

	return Map(path, dto)
}

// Decode parses description data, path selects the format.
func Decode(path string, data []byte) (Description, error) {
	var dto Description

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&dto); err != nil {
			return Description{}, &OpError{
				Op:   "config.decode",
				Kind: KindInvalid,
				Path: path,
				Err:  err,
			}
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&dto); err != nil {
			return Description{}, &OpError{
				Op:   "config.decode",
				Kind: KindInvalid,
				Path: path,
				Err:  err,
			}
		}
	}

	return dto, nil
}
