package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"genretopics/internal/domain"
	"genretopics/internal/dominant"
	"genretopics/internal/projection"
	"genretopics/internal/summarizer"
	"genretopics/internal/termmatrix"
	"genretopics/internal/tokenizer"
	"genretopics/internal/topicindex"
	"genretopics/internal/topicmodel"
)

// Options configure a Pipeline. Zero values select defaults.
type Options struct {
	Granularity     domain.Granularity
	MaxTerms        int
	Model           topicmodel.Config
	TopTerms        int
	ProjectionTerms int
	Workers         int
}

// Pipeline runs classification, tokenization, matrix building, topic model
// fitting and the three downstream views over a batch of records.
type Pipeline struct {
	classifier domain.Classifier
	tokenizer  domain.Tokenizer
	engine     *topicmodel.Engine
	opts       Options
}

// NewPipeline validates the options and wires the stages.
func NewPipeline(classifier domain.Classifier, tok domain.Tokenizer, opts Options) (*Pipeline, error) {
	if opts.Granularity == "" {
		opts.Granularity = domain.GranularityGenre
	}
	if opts.Granularity != domain.GranularityGenre && opts.Granularity != domain.GranularityDocument {
		return nil, domain.Fail(domain.StageMatrix, fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, opts.Granularity))
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Model.Workers <= 0 {
		opts.Model.Workers = opts.Workers
	}
	engine, err := topicmodel.NewEngine(opts.Model)
	if err != nil {
		return nil, err
	}
	return &Pipeline{classifier: classifier, tokenizer: tok, engine: engine, opts: opts}, nil
}

// Run executes the whole pipeline. Recoverable conditions end up in
// Result.Warnings; anything else is a *domain.StageError.
func (p *Pipeline) Run(ctx context.Context, records []domain.Record) (*Result, error) {
	if len(records) == 0 {
		return nil, domain.Fail(domain.StageClassify, domain.ErrEmptyCorpus)
	}
	res := &Result{classifier: p.classifier, tokenizer: p.tokenizer, Granularity: p.opts.Granularity}

	res.Documents = make([]domain.Document, len(records))
	for i, r := range records {
		res.Documents[i] = domain.Document{ID: r.ID, Text: r.Text, Genre: p.classifier.Classify(r.Text)}
	}
	res.GenreCounts = countGenres(res.Documents, p.classifier.Labels())
	glog.Infof("classified %d documents into %d genres", len(res.Documents), len(res.GenreCounts))

	tokens, err := p.tokenize(ctx, res.Documents)
	if err != nil {
		return nil, domain.Fail(domain.StageTokenize, err)
	}
	vocab, capped := tokenizer.BuildVocabulary(tokens, p.opts.MaxTerms)
	if capped {
		res.warn(domain.Warnf(domain.StageTokenize, domain.WarnVocabularyCapped,
			"vocabulary capped at %d terms", p.opts.MaxTerms))
	}
	if vocab.Len() == 0 {
		return nil, domain.Fail(domain.StageTokenize, domain.ErrEmptyVocabulary)
	}
	res.Vocabulary = vocab
	glog.Infof("vocabulary has %d terms", vocab.Len())

	matrix, warnings, err := termmatrix.NewBuilder(p.opts.Granularity, p.opts.Workers).
		Build(res.Documents, tokens, vocab, p.classifier.Labels())
	res.warn(warnings...)
	if err != nil {
		return nil, err
	}
	res.Matrix = matrix
	glog.Infof("term matrix: %d rows × %d terms, %d tokens", matrix.NumRows(), matrix.NumTerms(), matrix.TotalCount())

	model, warnings, err := p.engine.Fit(ctx, matrix)
	res.warn(warnings...)
	if err != nil {
		return nil, err
	}
	res.Model = model
	glog.Infof("topic model: K=%d, %d iterations, converged=%v", model.K, model.Iterations, model.Converged)

	if err := p.derive(ctx, res); err != nil {
		return nil, err
	}
	index, err := topicindex.FromTopicTerm(model.TopicTerm)
	if err != nil {
		return nil, domain.Fail(domain.StageModel, err)
	}
	res.index = index
	res.termIndex = tokenizer.NewVocabulary(model.Terms)
	return res, nil
}

// tokenize runs the tokenizer over every document; each task writes its own slot.
func (p *Pipeline) tokenize(ctx context.Context, docs []domain.Document) ([][]string, error) {
	out := make([][]string, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.tokenizer.Tokenize(docs[i].Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// derive fans the fitted model out to the summarizer, the resolver and the reducer.
func (p *Pipeline) derive(ctx context.Context, res *Result) error {
	var (
		topics   []domain.TopicSummary
		profiles []domain.GenreTopicProfile
		proj     domain.PCAProjection
		projWarn []domain.Warning
	)
	model := res.Model
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topics, err = summarizer.NewTopicSummarizer(p.opts.TopTerms).Summarize(model.TopicTerm, model.Terms)
		return err
	})
	g.Go(func() error {
		var err error
		profiles, err = dominant.NewResolver(p.opts.Granularity).Resolve(model.DocTopic, model.Genres)
		return err
	})
	g.Go(func() error {
		var err error
		proj, projWarn, err = projection.NewReducer(p.opts.ProjectionTerms).Project(model.TopicTerm, model.Terms)
		return err
	})
	err := g.Wait()
	res.warn(projWarn...)
	if err != nil {
		return err
	}
	res.Topics, res.Profiles, res.Projection = topics, profiles, proj
	return nil
}

// countGenres orders genres by document count, ties by classifier priority.
func countGenres(docs []domain.Document, labels []domain.Genre) []domain.GenreCount {
	rank := make(map[domain.Genre]int, len(labels))
	for i, l := range labels {
		rank[l] = i
	}
	counts := make(map[domain.Genre]int)
	var order []domain.Genre
	for _, d := range docs {
		if _, ok := counts[d.Genre]; !ok {
			order = append(order, d.Genre)
			if _, known := rank[d.Genre]; !known {
				rank[d.Genre] = len(rank)
			}
		}
		counts[d.Genre]++
	}
	out := make([]domain.GenreCount, len(order))
	for i, g := range order {
		out[i] = domain.GenreCount{Genre: g, Count: counts[g]}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return rank[out[a].Genre] < rank[out[b].Genre]
	})
	return out
}
