package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/models"
)

const registryIndexFile = "registry.json"

// Artifact is the serialized form of a trained model together with its
// preprocessing pipeline and evaluation metrics
type Artifact struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	ModelType string             `json:"model_type"`
	TrainedAt time.Time          `json:"trained_at"`
	Metrics   *Metrics           `json:"metrics,omitempty"`
	Pipeline  *features.Pipeline `json:"pipeline"`
	Model     json.RawMessage    `json:"model"`
}

// Classifier deserializes the model payload according to its type tag
func (a *Artifact) Classifier() (Classifier, error) {
	switch a.ModelType {
	case TypeLogistic:
		m := &LogisticRegression{}
		if err := json.Unmarshal(a.Model, m); err != nil {
			return nil, fmt.Errorf("failed to decode logistic regression: %w", err)
		}
		return m, nil
	case TypeRandomForest:
		m := &RandomForest{}
		if err := json.Unmarshal(a.Model, m); err != nil {
			return nil, fmt.Errorf("failed to decode random forest: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("artifact %q has unknown model type %q", a.Name, a.ModelType)
	}
}

// Registry stores model artifacts as JSON files under a directory with a
// name-to-path index
type Registry struct {
	dir string

	mu    sync.RWMutex
	index map[string]string // model name -> relative file path
}

// NewRegistry opens (or creates) a model registry at the given directory
func NewRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry dir: %w", err)
	}

	r := &Registry{dir: dir, index: make(map[string]string)}

	data, err := os.ReadFile(filepath.Join(dir, registryIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read registry index: %w", err)
	}

	if err := json.Unmarshal(data, &r.index); err != nil {
		return nil, fmt.Errorf("failed to parse registry index: %w", err)
	}

	return r, nil
}

// Save serializes a trained classifier and its pipeline under the model name
func (r *Registry) Save(name, version string, clf Classifier, pipeline *features.Pipeline, metrics *Metrics) (*Artifact, error) {
	if name == "" {
		return nil, fmt.Errorf("model name is required")
	}

	payload, err := json.Marshal(clf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}

	artifact := &Artifact{
		Name:      name,
		Version:   version,
		ModelType: clf.Type(),
		TrainedAt: time.Now().UTC(),
		Metrics:   metrics,
		Pipeline:  pipeline,
		Model:     payload,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}

	filename := sanitizeName(name) + ".json"
	if err := os.WriteFile(filepath.Join(r.dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	r.mu.Lock()
	r.index[name] = filename
	err = r.writeIndexLocked()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return artifact, nil
}

// Load reads the artifact registered under the model name
func (r *Registry) Load(name string) (*Artifact, error) {
	r.mu.RLock()
	filename, ok := r.index[name]
	r.mu.RUnlock()
	if !ok {
		return nil, models.ErrModelNotFound
	}

	data, err := os.ReadFile(filepath.Join(r.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact := &Artifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	return artifact, nil
}

// List returns the registered model names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.index))
	for name := range r.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the on-disk path of a registered model
func (r *Registry) Path(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filename, ok := r.index[name]
	if !ok {
		return "", models.ErrModelNotFound
	}
	return filepath.Join(r.dir, filename), nil
}

// writeIndexLocked persists the index; callers hold r.mu
func (r *Registry) writeIndexLocked() error {
	data, err := json.MarshalIndent(r.index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, registryIndexFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry index: %w", err)
	}
	return nil
}

// sanitizeName maps a model name to a safe file name
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
}
