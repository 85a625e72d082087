package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
)

//go:embed trend_report.schema.json
var reportSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("trend_report.schema.json", strings.NewReader(reportSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("trend_report.schema.json")
	})
	return compiledSchema, compiledSchemaErr
}

// Validate checks a marshalled report document against the embedded
// schema. Invariants the pipeline must already hold (score bounds,
// mention threshold, evidence cap) are enforced again here so a broken
// document is never written.
func Validate(doc []byte) error {
	var value any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("decode report JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("report schema validation: %w", err)
	}
	return nil
}

// Writer emits the run document to a file path as indented JSON.
type Writer struct {
	path string
}

var _ ports.ReportSink = (*Writer)(nil)

// NewWriter points the sink at an output path; parent directories are
// created on write.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write validates and writes the report atomically (temp file plus
// rename) and returns the final path.
func (w *Writer) Write(rep domain.Report) (string, error) {
	doc, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := Validate(doc); err != nil {
		return "", err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".trend-report-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish report: %w", err)
	}
	return w.path, nil
}
