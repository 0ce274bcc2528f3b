package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/watermark-cleaner/internal/detection"
)

// Failure kinds recorded in ItemError.Kind.
const (
	KindDecode      = "decode"
	KindDetect      = "detect"
	KindReconstruct = "reconstruct"
	KindEncode      = "encode"
	KindTimeout     = "timeout"
	KindCanceled    = "canceled"
)

// ItemError is the failure of a single batch item.
type ItemError struct {
	Path string
	Kind string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Record is the manifest entry of one input file.
type Record struct {
	SourceFile     string             `json:"sourceFile"`
	OutputFile     string             `json:"outputFile,omitempty"`
	RegionsRemoved int                `json:"regionsRemoved"`
	Regions        []detection.Region `json:"regions,omitempty"`
	PixelsChanged  int                `json:"pixelsChanged"`
	Success        bool               `json:"success"`
	Error          string             `json:"error,omitempty"`

	err *ItemError
}

// Err returns the item's failure, or nil.
func (r Record) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Manifest summarizes a batch run.
type Manifest struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Strategy    string    `json:"strategy"`
	DryRun      bool      `json:"dryRun,omitempty"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Records     []Record  `json:"records"`
}

func newManifest(now time.Time, strategy string, dryRun bool, records []Record) *Manifest {
	m := &Manifest{
		GeneratedAt: now.UTC(),
		Strategy:    strategy,
		DryRun:      dryRun,
		Total:       len(records),
		Records:     records,
	}
	if m.Records == nil {
		m.Records = []Record{}
	}
	for _, r := range records {
		if r.Success {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	return m
}

// Err joins the errors of every failed item. It is nil when all succeeded.
func (m *Manifest) Err() error {
	var errs []error
	for _, r := range m.Records {
		if err := r.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteFile writes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteFile.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
