package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

func TestBaseEstimatorTransitions(t *testing.T) {
	var e BaseEstimator

	assert.False(t, e.IsFitted())
	assert.Equal(t, "not fitted", e.State().String())
	require.NoError(t, e.RequireUnfitted("SimpleRegression"))

	err := e.RequireFitted("SimpleRegression", "Predict")
	var nfe *errors.NotFittedError
	require.True(t, errors.As(err, &nfe))

	e.SetFitted(12)
	assert.True(t, e.IsFitted())
	assert.Equal(t, 12, e.NSamples())
	require.NoError(t, e.RequireFitted("SimpleRegression", "Predict"))

	err = e.RequireUnfitted("SimpleRegression")
	var afe *errors.AlreadyFittedError
	assert.True(t, errors.As(err, &afe))
}
