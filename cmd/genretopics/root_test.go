package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genretopics/internal/config"
	"genretopics/internal/domain"
	"genretopics/internal/topicmodel"
)

func writeCorpus(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "plots.csv")
	data := "Title,Plot\n" +
		"R1,A robot learns to paint\n" +
		"R2,The robot escapes the lab\n" +
		"W1,A soldier survives the battle\n" +
		"W2,The army loses a battle at dawn\n" +
		"L1,Two strangers fall in love in Paris\n" +
		"L2,A love letter changes everything\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRootCommandWritesReport(t *testing.T) {
	dir := t.TempDir()
	corpus := writeCorpus(t, dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model:\n  topics: 2\n"), 0o644))
	outDir := filepath.Join(dir, "out")

	cmd := NewRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--config", cfgPath, "--out", outDir, "--topics", "3", "--html=false", corpus})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "genre_counts")
	assert.Contains(t, stdout.String(), "report written to")

	runs, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	runDir := filepath.Join(outDir, runs[0].Name())
	_, err = os.Stat(filepath.Join(runDir, "genre_topics.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(runDir, "report.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestRootCommandRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	corpus := writeCorpus(t, dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("report:\n  dir: "+filepath.Join(dir, "out")+"\n"), 0o644))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "--granularity", "scene", corpus})
	err := cmd.Execute()
	assert.ErrorIs(t, err, domain.ErrUnsupportedGranularity)
	var se *domain.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, domain.StageConfig, se.Stage)
	assert.Contains(t, err.Error(), "config stage")
}

func TestRootCommandNamesConfigStageOnBadFile(t *testing.T) {
	dir := t.TempDir()
	corpus := writeCorpus(t, dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model: [unclosed"), 0o644))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, corpus})
	err := cmd.Execute()
	require.Error(t, err)
	var se *domain.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, domain.StageConfig, se.Stage)
}

func TestModelConfigFillsDefaults(t *testing.T) {
	c := modelConfig(config.ModelConfig{Topics: 4, Seed: 7, Tolerance: 1e-3})
	assert.Equal(t, 4, c.Topics)
	assert.InDelta(t, 0.25, c.Alpha, 1e-12)
	assert.InDelta(t, 0.25, c.Eta, 1e-12)
	assert.Equal(t, topicmodel.DefaultMaxIterations, c.MaxIterations)
	assert.Equal(t, 1e-3, c.Tolerance)
	assert.Equal(t, uint64(7), c.Seed)
	assert.Positive(t, c.Workers)
	assert.NoError(t, c.Validate())
}

func TestNewClassifierFromConfig(t *testing.T) {
	c, err := newClassifier(config.ClassifierConfig{
		Rules:    []config.RuleConfig{{Label: "Musical", Keywords: []string{"song"}}},
		Fallback: "Unknown",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Genre("Musical"), c.Classify("a song at dawn"))
	assert.Equal(t, domain.Genre("Unknown"), c.Classify("a robot"))

	_, err = newClassifier(config.ClassifierConfig{
		Rules: []config.RuleConfig{{Label: "Blank", Keywords: []string{" "}}},
	})
	var se *domain.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, domain.StageClassify, se.Stage)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	c, err = newClassifier(config.ClassifierConfig{Fallback: "Other"})
	require.NoError(t, err)
	assert.Equal(t, domain.Genre("Sci-Fi"), c.Classify("a robot"))
}
