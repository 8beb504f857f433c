package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/preprocessing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source: data/housing.csv
feature: area
target: price
method: constant
constant: 0
description: housing prices
save: /tmp/model.json
log_level: debug
`)
	run, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "data", "housing.csv"), run.Source)
	assert.Equal(t, "/tmp/model.json", run.Save)
	assert.Empty(t, run.Plot)
	require.NotNil(t, run.Constant)
	assert.Equal(t, 0.0, *run.Constant)
	require.NoError(t, run.Validate())

	m, err := run.ImputationMethod()
	require.NoError(t, err)
	assert.Equal(t, preprocessing.StrategyFillConstant, m.Strategy())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "source: a.csv\nfeatur: x\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMerge(t *testing.T) {
	one := 1.0
	two := 2.0
	file := Run{Source: "a.csv", Feature: "x", Target: "y", Method: "constant", Constant: &one}
	flags := Run{Target: "z", Constant: &two}

	got := file.Merge(flags)
	assert.Equal(t, "a.csv", got.Source)
	assert.Equal(t, "x", got.Feature)
	assert.Equal(t, "z", got.Target)
	assert.Equal(t, 2.0, *got.Constant)
	assert.Equal(t, 1.0, *file.Constant, "receiver is not modified")
}

func TestValidate(t *testing.T) {
	valid := Run{Source: "a.csv", Feature: "x", Target: "y"}
	require.NoError(t, valid.Validate())

	m, err := valid.ImputationMethod()
	require.NoError(t, err)
	assert.Equal(t, preprocessing.StrategyFillMean, m.Strategy())

	tests := []struct {
		name  string
		run   Run
		check func(t *testing.T, err error)
	}{
		{
			name: "missing target",
			run:  Run{Source: "a.csv", Feature: "x"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasReason(err, errors.ReasonEmptyInput))
			},
		},
		{
			name: "unknown method",
			run:  Run{Source: "a.csv", Feature: "x", Target: "y", Method: "mode"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasReason(err, errors.ReasonInvalidValue))
			},
		},
		{
			name: "constant without value",
			run:  Run{Source: "a.csv", Feature: "x", Target: "y", Method: "constant"},
			check: func(t *testing.T, err error) {
				var cve *errors.ConstantValueError
				assert.True(t, errors.As(err, &cve))
			},
		},
		{
			name: "bad log level",
			run:  Run{Source: "a.csv", Feature: "x", Target: "y", LogLevel: "trace"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasReason(err, errors.ReasonInvalidValue))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Validate()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
