// Package config loads the settings of a fit run from YAML.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
	"github.com/YuminosukeSato/dataexplorer/preprocessing"
)

// Run holds the settings of one load, preprocess and fit run.
type Run struct {
	// Source is the CSV, Excel or SQLite file to load.
	Source string `yaml:"source"`

	Feature string `yaml:"feature"`
	Target  string `yaml:"target"`

	// Method is a strategy name (delete, mean, median, constant) or its menu label.
	Method string `yaml:"method,omitempty"`
	// Constant is required when Method is constant.
	Constant *float64 `yaml:"constant,omitempty"`

	Description string `yaml:"description,omitempty"`

	// Save and Plot are optional output paths.
	Save string `yaml:"save,omitempty"`
	Plot string `yaml:"plot,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultMethod is used when neither the file nor the flags name a method.
const DefaultMethod = "mean"

// Load reads a Run from a YAML file. Unknown keys are rejected, and relative
// Source, Save and Plot paths are resolved against the file's directory.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	var run Run
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&run); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&run.Source, &run.Save, &run.Plot} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return &run, nil
}

// Merge returns a copy of r where every non-zero field of override wins.
func (r Run) Merge(override Run) Run {
	out := r
	for _, f := range []struct{ dst, src *string }{
		{&out.Source, &override.Source},
		{&out.Feature, &override.Feature},
		{&out.Target, &override.Target},
		{&out.Method, &override.Method},
		{&out.Description, &override.Description},
		{&out.Save, &override.Save},
		{&out.Plot, &override.Plot},
		{&out.LogLevel, &override.LogLevel},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	if override.Constant != nil {
		v := *override.Constant
		out.Constant = &v
	}
	return out
}

// Validate checks that the run names a source and both columns, and that
// the method, constant and log level are usable.
func (r Run) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"source", r.Source},
		{"feature", r.Feature},
		{"target", r.Target},
	} {
		if strings.TrimSpace(f.value) == "" {
			return errors.NewValidationError(f.name, errors.ReasonEmptyInput, f.value)
		}
	}
	if _, err := r.ImputationMethod(); err != nil {
		return err
	}
	if r.LogLevel != "" {
		if _, err := log.ParseLevel(r.LogLevel); err != nil {
			return errors.NewValidationError("log_level", errors.ReasonInvalidValue, r.LogLevel)
		}
	}
	return nil
}

// ImputationMethod resolves Method and Constant, defaulting to DefaultMethod.
func (r Run) ImputationMethod() (preprocessing.Method, error) {
	name := r.Method
	if strings.TrimSpace(name) == "" {
		name = DefaultMethod
	}
	s, err := preprocessing.ParseStrategy(name)
	if err != nil {
		return preprocessing.Method{}, err
	}
	return preprocessing.NewMethod(s, r.Constant)
}
