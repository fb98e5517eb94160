// Package file loads raw scheme records from YAML, JSON or CSV exports.
package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"scheme-eligibility-service/internal/domain"
)

// SchemeLoader reads scheme sources from a file on every call.
type SchemeLoader struct {
	path string
}

func NewSchemeLoader(path string) *SchemeLoader {
	return &SchemeLoader{path: path}
}

func (l *SchemeLoader) LoadSchemes(_ context.Context) ([]domain.SchemeSource, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read scheme file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported scheme file %q", l.path)
	}
}

type schemeDocument struct {
	Schemes []domain.SchemeSource `yaml:"schemes"`
}

// ParseYAML decodes a `schemes:` document. JSON is accepted as YAML.
func ParseYAML(data []byte) ([]domain.SchemeSource, error) {
	var doc schemeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scheme file: %w", err)
	}
	return validate(doc.Schemes)
}

// CSV columns as exported from the scheme spreadsheet. eligibility holds a
// JSON array of criterion sentences.
const (
	colName        = "scheme_name"
	colEligibility = "eligibility"
	colDetails     = "details"
	colBenefits    = "benefits"
	colDocuments   = "documents_required"
)

// ParseCSV decodes the spreadsheet export. Rows whose eligibility column is
// not a JSON array fall back to one criterion per line.
func ParseCSV(r io.Reader) ([]domain.SchemeSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colName, colEligibility} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var sources []domain.SchemeSource
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		name := field(record, colName)
		if name == "" {
			continue
		}
		sources = append(sources, domain.SchemeSource{
			Name:        name,
			Criteria:    splitList(field(record, colEligibility)),
			Description: field(record, colDetails),
			Benefits:    splitList(field(record, colBenefits)),
			Documents:   splitList(field(record, colDocuments)),
		})
	}
	return validate(sources)
}

// splitList accepts a JSON array of strings or newline separated text.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return compact(items)
		}
	}
	return compact(strings.Split(raw, "\n"))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validate(sources []domain.SchemeSource) ([]domain.SchemeSource, error) {
	seen := make(map[string]struct{}, len(sources))
	for i, src := range sources {
		if strings.TrimSpace(src.Name) == "" {
			return nil, fmt.Errorf("scheme %d has no name", i+1)
		}
		key := domain.Fold(src.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate scheme %q", src.Name)
		}
		seen[key] = struct{}{}
	}
	return sources, nil
}
