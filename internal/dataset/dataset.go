// Package dataset manages the reference photo folders: one directory per
// member key under a photo root, read wholesale at training time.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// SupportedExtensions lists the reference photo extensions, lower case
var SupportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// IsSupported reports whether path has a supported image extension (case-insensitive)
func IsSupported(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Sample is a decoded reference photo
type Sample struct {
	recognizer.Sample
	Key  string
	Path string
}

// Stats summarizes one load of the photo root
type Stats struct {
	Root      string         `json:"root"`
	Samples   int            `json:"samples"`
	PerMember map[string]int `json:"per_member"`
	Skipped   int            `json:"skipped"`
}

// LoadOptions tunes Load. The zero value is valid.
type LoadOptions struct {
	Logger *slog.Logger
	// OnFile is called once per visited candidate file, decoded or not
	OnFile func(path string)
}

// Result bundles everything one load produces. Labels is derived from the
// registry ordering used for this load and must travel with the samples.
type Result struct {
	Samples []Sample
	Labels  *domain.LabelTable
	Stats   Stats
}

// EnsureDirs creates one folder per member under root
func EnsureDirs(root string, registry *domain.Registry) error {
	for _, key := range registry.Keys() {
		if err := os.MkdirAll(filepath.Join(root, key), 0o755); err != nil {
			return fmt.Errorf("create member folder %s: %w", key, err)
		}
	}
	return nil
}

// Load reads every supported image under root/<key>/ for each member in
// registry order. Missing folders, unsupported extensions and files that do
// not decode are skipped, never reported as errors.
func Load(root string, registry *domain.Registry, opts LoadOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	labels := registry.LabelTable()
	result := &Result{
		Labels: labels,
		Stats: Stats{
			Root:      root,
			PerMember: make(map[string]int, registry.Len()),
		},
	}

	for _, key := range registry.Keys() {
		label, _ := labels.Label(key)
		result.Stats.PerMember[key] = 0

		folder := filepath.Join(root, key)
		entries, err := os.ReadDir(folder)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("member folder missing", slog.String("member", key), slog.String("folder", folder))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read member folder %s: %w", folder, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !IsSupported(entry.Name()) {
				continue
			}

			path := filepath.Join(folder, entry.Name())
			if opts.OnFile != nil {
				opts.OnFile(path)
			}

			img, err := DecodeFile(path)
			if err != nil {
				result.Stats.Skipped++
				logger.Debug("skipping reference photo", slog.String("path", path), slog.Any("error", err))
				continue
			}

			result.Samples = append(result.Samples, Sample{
				Sample: recognizer.Sample{Image: img, Label: label},
				Key:    key,
				Path:   path,
			})
			result.Stats.PerMember[key]++
		}
	}

	result.Stats.Samples = len(result.Samples)
	return result, nil
}

// CountCandidates counts the files Load would try to decode
func CountCandidates(root string, registry *domain.Registry) int {
	total := 0
	for _, key := range registry.Keys() {
		entries, err := os.ReadDir(filepath.Join(root, key))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsSupported(entry.Name()) {
				total++
			}
		}
	}
	return total
}

// RecognizerSamples strips the bookkeeping fields for a Trainer
func (r *Result) RecognizerSamples() []recognizer.Sample {
	out := make([]recognizer.Sample, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Sample
	}
	return out
}
