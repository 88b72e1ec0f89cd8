package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailWrapsOnce(t *testing.T) {
	err := Fail(StageModel, ErrNoRows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRows))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageModel, se.Stage)

	again := Fail(StageReport, err)
	require.True(t, errors.As(again, &se))
	assert.Equal(t, StageModel, se.Stage)
	assert.Equal(t, "model stage: no non-empty rows to model", again.Error())
}

func TestFailNil(t *testing.T) {
	assert.NoError(t, Fail(StageIngest, nil))
}

func TestHasWarning(t *testing.T) {
	ws := []Warning{Warnf(StageMatrix, WarnEmptyRowDropped, "row %q dropped", "Other")}
	assert.True(t, HasWarning(ws, WarnEmptyRowDropped))
	assert.False(t, HasWarning(ws, WarnNotConverged))
	assert.Equal(t, `[matrix/empty_row_dropped] row "Other" dropped`, ws[0].String())
}
