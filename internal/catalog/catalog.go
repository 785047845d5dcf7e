// Package catalog loads the cultural knowledge records that the ingestion
// pipeline embeds. Records live in a declarative data file so content can
// change without rebuilding the binaries.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"github.com/ceylonmate/culture-kb/internal/types"
)

// ErrEmpty is returned when a catalog holds no records
var ErrEmpty = errors.New("catalog has no records")

// Format is the encoding of a catalog file
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// File is the on-disk catalog layout
type File struct {
	Records []types.KnowledgeRecord `json:"records" yaml:"records" toml:"records"`
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// Load reads, parses and validates the catalog at path
func Load(path string) ([]types.KnowledgeRecord, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	records, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	if err := Validate(records); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	return records, nil
}

// Parse decodes catalog data without validating it
func Parse(data []byte, format Format) ([]types.KnowledgeRecord, error) {
	var f File
	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return f.Records, nil
}

// Validate rejects empty catalogs, incomplete records and duplicate (category, text) pairs.
// Categories are free-form and not checked against any list.
func Validate(records []types.KnowledgeRecord) error {
	if len(records) == 0 {
		return ErrEmpty
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	dups := lo.FindDuplicatesBy(records, func(r types.KnowledgeRecord) string {
		return r.Key()
	})
	if len(dups) > 0 {
		return fmt.Errorf("duplicate record in category %q", dups[0].Category)
	}

	return nil
}

// Categories returns the distinct categories in catalog order
func Categories(records []types.KnowledgeRecord) []string {
	return lo.Uniq(lo.Map(records, func(r types.KnowledgeRecord, _ int) string {
		return r.Category
	}))
}
