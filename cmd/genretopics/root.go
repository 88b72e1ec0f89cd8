package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"genretopics/internal/config"
	"genretopics/internal/domain"
	"genretopics/internal/genre"
	"genretopics/internal/ingest"
	"genretopics/internal/report"
	"genretopics/internal/service"
	"genretopics/internal/tokenizer"
	"genretopics/internal/topicmodel"
	"genretopics/internal/tui"
)

type flags struct {
	config      string
	topics      int
	seed        int64
	out         string
	granularity string
	html        bool
	browse      bool
	quiet       bool
}

// NewRootCmd returns the genretopics command.
func NewRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "genretopics [flags] file...",
		Short: "Fit a topic model over movie plots grouped by genre",
		Long: "genretopics classifies plot summaries into genres, fits an LDA topic model over the\n" +
			"genre term counts and reports top terms per topic, the dominant topic per genre\n" +
			"and a two dimensional projection of the topics.",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd, cfg, f, args)
		},
	}
	cmd.Flags().StringVar(&f.config, "config", "", "Path to YAML config file (default ./config.yaml or ~/.config/genretopics/config.yaml)")
	cmd.Flags().IntVarP(&f.topics, "topics", "k", 0, "Number of topics")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed of the topic model")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Report directory")
	cmd.Flags().StringVar(&f.granularity, "granularity", "", "Row granularity: genre or document")
	cmd.Flags().BoolVar(&f.html, "html", true, "Write report.html")
	cmd.Flags().BoolVar(&f.browse, "browse", false, "Open the terminal browser after the run")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not print tables")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	return cmd
}

func loadConfig(cmd *cobra.Command, f flags) (*config.AppConfig, error) {
	path := f.config
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, domain.Fail(domain.StageConfig, fmt.Errorf("failed to load config: %w", err))
	}

	fl := cmd.Flags()
	if fl.Changed("topics") {
		cfg.Model.Topics = f.topics
	}
	if fl.Changed("seed") {
		cfg.Model.Seed = f.seed
	}
	if fl.Changed("out") {
		cfg.Report.Dir = f.out
	}
	if fl.Changed("granularity") {
		cfg.Model.Granularity = f.granularity
	}
	if fl.Changed("html") {
		cfg.Report.HTML = f.html
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.Fail(domain.StageConfig, err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.AppConfig, f flags, inputs []string) error {
	classifier, err := newClassifier(cfg.Classifier)
	if err != nil {
		return err
	}
	tok := tokenizer.New(tokenizer.Options{MinLength: cfg.Tokenizer.MinLength, ExtraStopwords: cfg.Tokenizer.ExtraStopwords})
	pipeline, err := service.NewPipeline(classifier, tok, service.Options{
		Granularity:     domain.Granularity(cfg.Model.Granularity),
		MaxTerms:        cfg.Tokenizer.MaxTerms,
		Model:           modelConfig(cfg.Model),
		TopTerms:        cfg.Summary.TopTerms,
		ProjectionTerms: cfg.Projection.MaxTerms,
		Workers:         cfg.Model.Workers,
	})
	if err != nil {
		return err
	}

	records, err := ingest.LoadPaths(inputs, ingest.Columns{Text: cfg.Input.TextColumn, ID: cfg.Input.IDColumn})
	if err != nil {
		return err
	}
	res, err := pipeline.Run(context.Background(), records)
	if err != nil {
		return err
	}

	data := report.FromResult(res)
	out := cmd.OutOrStdout()
	if !f.quiet {
		report.PrintTables(out, data)
	}
	if cfg.Report.CSV || cfg.Report.HTML {
		w := &report.Writer{Dir: cfg.Report.Dir, CSV: cfg.Report.CSV, HTML: cfg.Report.HTML}
		dir, err := w.Write(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "report written to %s\n", dir)
	}

	if f.browse {
		m := tui.New(res, tui.Overview{
			Summary: fmt.Sprintf("%d documents · %d rows · %d terms · %d topics",
				len(res.Documents), res.Matrix.NumRows(), res.Matrix.NumTerms(), res.Model.K),
			Topics:   res.Topics,
			Profiles: res.Profiles,
		})
		if _, err := tea.NewProgram(m).Run(); err != nil {
			return err
		}
	}
	return nil
}

func newClassifier(cfg config.ClassifierConfig) (*genre.Classifier, error) {
	if len(cfg.Rules) == 0 {
		return genre.New(genre.DefaultRules(), domain.Genre(cfg.Fallback)), nil
	}
	rules := make([]genre.Rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		r, err := genre.NewRule(domain.Genre(rc.Label), rc.Keywords...)
		if err != nil {
			return nil, domain.Fail(domain.StageClassify, err)
		}
		rules = append(rules, r)
	}
	return genre.New(rules, domain.Genre(cfg.Fallback)), nil
}

func modelConfig(mc config.ModelConfig) topicmodel.Config {
	c := topicmodel.DefaultConfig(mc.Topics)
	if mc.Alpha > 0 {
		c.Alpha = mc.Alpha
	}
	if mc.Eta > 0 {
		c.Eta = mc.Eta
	}
	if mc.MaxIterations > 0 {
		c.MaxIterations = mc.MaxIterations
	}
	if mc.Tolerance > 0 {
		c.Tolerance = mc.Tolerance
	}
	if mc.DocMaxIterations > 0 {
		c.DocMaxIterations = mc.DocMaxIterations
	}
	if mc.DocTolerance > 0 {
		c.DocTolerance = mc.DocTolerance
	}
	c.Seed = uint64(mc.Seed)
	if mc.Workers > 0 {
		c.Workers = mc.Workers
	}
	return c
}
