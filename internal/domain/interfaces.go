package domain

// Genre is a coarse label assigned to a plot summary.
type Genre string

// GenreOther is the fallback label for text no rule matches.
const GenreOther Genre = "Other"

// Granularity selects what a row of the term matrix stands for.
type Granularity string

const (
	// GranularityGenre aggregates every document of a genre into one row.
	GranularityGenre Granularity = "genre"
	// GranularityDocument keeps one row per document.
	GranularityDocument Granularity = "document"
)

// Record is one (identifier, text) pair handed over by ingestion.
type Record struct {
	ID   string
	Text string
}

// Document is a record after classification. It is never mutated afterwards.
type Document struct {
	ID    string
	Text  string
	Genre Genre
}

// GenreCount is the number of documents assigned to a genre.
type GenreCount struct {
	Genre Genre
	Count int
}

// TermWeight is one ranked entry of a topic summary.
type TermWeight struct {
	Term   string
	Weight float64
}

// TopicSummary lists the highest weighted terms of one topic.
type TopicSummary struct {
	Topic int
	Terms []TermWeight
}

// GenreTopicProfile carries the topic mixture of a genre and its dominant topic.
type GenreTopicProfile struct {
	Genre         Genre
	DominantTopic int
	Weight        float64
	Weights       []float64
}

// TopicCoordinate is the position of one topic in the reduced space.
type TopicCoordinate struct {
	Topic  int
	Coords []float64
}

// PCAProjection is the low dimensional view of the topics.
type PCAProjection struct {
	Points            []TopicCoordinate
	ExplainedVariance []float64
	// Terms are the columns that took part in the projection.
	Terms []string
}

// TopicMatch is a topic scored against a free text query.
type TopicMatch struct {
	Topic int
	Score float64
}

// Classifier assigns exactly one genre to a text.
type Classifier interface {
	Classify(text string) Genre
	Labels() []Genre
}

// Tokenizer turns raw text into normalized terms.
type Tokenizer interface {
	Tokenize(text string) []string
}
