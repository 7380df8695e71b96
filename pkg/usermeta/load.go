// SPDX-License-Identifier: MPL-2.0

package usermeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/usbundle/usbundle/pkg/cueutil"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for file extensions it cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported metadata format")

// Document is a raw, not yet validated metadata document.
type Document struct {
	// Path is the file the document was read from; it prefixes messages.
	Path string
	// Data is the decoded document body.
	Data map[string]any
}

// Load reads the metadata document at path. The encoding is chosen by file
// extension: .json and .jsonc are parsed as JSON with comments and trailing
// commas tolerated, .yaml and .yml as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("metadata file %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	return Parse(path, data)
}

// Parse decodes data as a metadata document. path is used for format
// detection and in messages.
func Parse(path string, data []byte) (*Document, error) {
	var body any

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &body); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%s: invalid YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w %q (expected .json, .jsonc, .yaml or .yml)", path, ErrUnsupportedFormat, ext)
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: metadata document must be an object, got %T", path, body)
	}

	return &Document{Path: path, Data: obj}, nil
}

// LoadAndValidate reads the document at path and validates it.
func LoadAndValidate(path string) (*Metadata, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Validate(doc)
}
