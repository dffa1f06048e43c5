// Package storage exports built scenes to disk as a metadata document plus
// one CSV of interactions per animated layer.
package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"

	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/events"
	"github.com/san-kum/fmriviz/internal/metrics"
	"github.com/san-kum/fmriviz/internal/scene"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type LayerMetadata struct {
	Name         string             `json:"name"`
	Kind         string             `json:"kind"`
	Style        string             `json:"style"`
	Shape        []int              `json:"shape"`
	Nodes        int                `json:"nodes"`
	Interactions int                `json:"interactions"`
	File         string             `json:"file,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

type GuessMetadata struct {
	Index int     `json:"index"`
	Label string  `json:"label,omitempty"`
	Score float32 `json:"score"`
}

type ExportMetadata struct {
	ID        string          `json:"id"`
	Input     string          `json:"input"`
	Timestamp time.Time       `json:"timestamp"`
	Options   *config.Options `json:"options"`
	Layers    []LayerMetadata `json:"layers"`
	Top       []GuessMetadata `json:"top"`
}

// Save writes r under a fresh export directory and returns its id.
func (s *Store) Save(ctx context.Context, r *scene.SampleResult, opts *config.Options) (string, error) {
	id := fmt.Sprintf("%s_%s", inputName(r.Input), uuid.New().String()[:8])
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := ExportMetadata{
		ID:        id,
		Input:     r.Input,
		Timestamp: time.Now(),
		Options:   opts,
	}

	summaries := make(map[string]map[string]float64)
	for _, sum := range metrics.Summarize(r) {
		summaries[sum.Layer] = sum.Values
	}

	for i, e := range r.Layers {
		v := e.Visualization
		lm := LayerMetadata{
			Name:         v.Name,
			Kind:         v.Kind.String(),
			Style:        v.Style.String(),
			Shape:        v.Shape,
			Nodes:        v.NodeCount(),
			Interactions: e.Interactions,
			Metrics:      summaries[v.Name],
		}
		if e.Animation != nil {
			lm.File = fmt.Sprintf("%02d_%s.csv", i, sanitize(v.Name))
			if err := writeLayer(filepath.Join(dir, lm.File), &e); err != nil {
				return "", err
			}
		}
		meta.Layers = append(meta.Layers, lm)
	}

	for _, g := range r.Top {
		meta.Top = append(meta.Top, GuessMetadata{Index: g.Index, Label: g.Label, Score: g.Score})
	}

	metaPath := filepath.Join(dir, metadataFile)
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	capitan.Info(ctx, events.ExportWritten,
		events.InputKey.Field(r.Input),
		events.PathKey.Field(dir),
		events.LayersKey.Field(len(meta.Layers)),
	)

	return id, nil
}

// writeLayer stores the ranked strengths of an animated layer, strongest
// first.
func writeLayer(path string, e *scene.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"rank", "strength"}); err != nil {
		return err
	}
	for i, v := range e.Strengths {
		row := []string{strconv.Itoa(i), strconv.FormatFloat(float64(v), 'f', 6, 32)}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]ExportMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ExportMetadata{}, nil
		}
		return nil, err
	}

	exports := make([]ExportMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		exports = append(exports, *meta)
	}

	return exports, nil
}

func (s *Store) Load(id string) (*ExportMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta ExportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStrengths reads back the strength column of a layer file.
func (s *Store) LoadStrengths(id, file string) ([]float32, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, file))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var out []float32
	for _, rec := range records[min(1, len(records)):] {
		if len(rec) < 2 || rec[1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 32)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: %w", file, err)
		}
		out = append(out, float32(v))
	}
	return out, nil
}

func inputName(input string) string {
	base := filepath.Base(input)
	return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
