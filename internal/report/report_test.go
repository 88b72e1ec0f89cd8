package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genretopics/internal/domain"
)

func sampleData() Data {
	return Data{
		Topics: 2,
		GenreCounts: []domain.GenreCount{
			{Genre: "War", Count: 3},
			{Genre: domain.GenreOther, Count: 1},
		},
		Summaries: []domain.TopicSummary{
			{Topic: 0, Terms: []domain.TermWeight{{Term: "battle", Weight: 0.9}, {Term: "love", Weight: 0.1}}},
			{Topic: 1, Terms: []domain.TermWeight{{Term: "love", Weight: 0.8}, {Term: "battle", Weight: 0.2}}},
		},
		Profiles: []domain.GenreTopicProfile{
			{Genre: "War", DominantTopic: 0, Weight: 0.75, Weights: []float64{0.75, 0.25}},
		},
		Projection: domain.PCAProjection{
			Points: []domain.TopicCoordinate{
				{Topic: 0, Coords: []float64{-1, 0}},
				{Topic: 1, Coords: []float64{1, 0}},
			},
			ExplainedVariance: []float64{1, 0},
		},
		Warnings: []domain.Warning{domain.Warnf(domain.StageModel, domain.WarnTopicsExceedRows, "2 topics for 1 row")},
	}
}

func TestTableLayouts(t *testing.T) {
	t.Parallel()
	tables := Tables(sampleData())
	require.Len(t, tables, 4)

	assert.Equal(t, "genre_counts", tables[0].Name)
	assert.Equal(t, []string{"genre", "documents"}, tables[0].Header)
	assert.Equal(t, [][]string{{"War", "3"}, {"Other", "1"}}, tables[0].Rows)

	assert.Equal(t, []string{"topic", "rank", "term", "weight"}, tables[1].Header)
	assert.Len(t, tables[1].Rows, 4)
	assert.Equal(t, []string{"1", "1", "love", "0.800000"}, tables[1].Rows[2])

	assert.Equal(t, []string{"genre", "dominant_topic", "weight", "topic_0", "topic_1"}, tables[2].Header)
	assert.Equal(t, [][]string{{"War", "0", "0.750000", "0.750000", "0.250000"}}, tables[2].Rows)

	assert.Equal(t, []string{"topic", "pc1", "pc2", "pc1_variance", "pc2_variance"}, tables[3].Header)
	assert.Equal(t, []string{"0", "-1.000000", "0.000000", "1.000000", "0.000000"}, tables[3].Rows[0])
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, GenreCountsTable([]domain.GenreCount{{Genre: "Sci-Fi, space", Count: 2}})))
	assert.Equal(t, "genre,documents\n\"Sci-Fi, space\",2\n", buf.String())
}

func TestWriterCreatesRunDirectory(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	w := &Writer{Dir: base, CSV: true, HTML: true}
	runDir, err := w.Write(sampleData())
	require.NoError(t, err)
	assert.Equal(t, base, filepath.Dir(runDir))
	assert.Len(t, filepath.Base(runDir), 26)

	for _, name := range []string{"genre_counts.csv", "topic_terms.csv", "genre_topics.csv", "topic_projection.csv"} {
		f, err := os.Open(filepath.Join(runDir, name))
		require.NoError(t, err, name)
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		require.NoError(t, err, name)
		assert.NotEmpty(t, rows, name)
	}

	html, err := os.ReadFile(filepath.Join(runDir, "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Genre topics")
	assert.Contains(t, string(html), "Topic projection")
	assert.Contains(t, string(html), "wordCloud")

	second, err := w.Write(sampleData())
	require.NoError(t, err)
	assert.NotEqual(t, runDir, second)
}

func TestWriterCSVOnly(t *testing.T) {
	t.Parallel()
	runDir, err := (&Writer{Dir: t.TempDir(), CSV: true}).Write(sampleData())
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(runDir, "report.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrintTables(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintTables(&buf, sampleData())
	out := buf.String()
	for _, want := range []string{"genre_counts", "topic_projection", "dominant_topic", "battle", "[model/topics_exceed_rows]"} {
		assert.True(t, strings.Contains(out, want), "missing %q", want)
	}
}
