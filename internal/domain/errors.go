package domain

import (
	"errors"
	"fmt"
)

// Stage names a step of the pipeline in errors and warnings.
type Stage string

const (
	StageConfig    Stage = "config"
	StageIngest    Stage = "ingest"
	StageClassify  Stage = "classify"
	StageTokenize  Stage = "tokenize"
	StageMatrix    Stage = "matrix"
	StageModel     Stage = "model"
	StageSummarize Stage = "summarize"
	StageResolve   Stage = "resolve"
	StageProject   Stage = "project"
	StageReport    Stage = "report"
)

var (
	ErrEmptyCorpus            = errors.New("empty corpus")
	ErrEmptyVocabulary        = errors.New("empty vocabulary")
	ErrNoRows                 = errors.New("no non-empty rows to model")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrDuplicateGenreRow      = errors.New("genre appears on more than one row")
	ErrDimensionMismatch      = errors.New("dimension mismatch")
	ErrMissingTextColumn      = errors.New("text column not found")
	ErrNoInputDocuments       = errors.New("no input documents found")
	ErrUnsupportedGranularity = errors.New("unsupported granularity")
)

// StageError reports an unrecoverable failure together with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fail wraps err in a StageError unless it already carries one.
func Fail(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// WarningCode identifies the kind of a recoverable condition.
type WarningCode string

const (
	WarnEmptyRowDropped      WarningCode = "empty_row_dropped"
	WarnTopicsExceedRows     WarningCode = "topics_exceed_rows"
	WarnNotConverged         WarningCode = "not_converged"
	WarnZeroVarianceDropped  WarningCode = "zero_variance_dropped"
	WarnDegenerateProjection WarningCode = "degenerate_projection"
	WarnVocabularyCapped     WarningCode = "vocabulary_capped"
)

// Warning is a recoverable condition surfaced to the caller.
type Warning struct {
	Stage   Stage
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s/%s] %s", w.Stage, w.Code, w.Message)
}

// Warnf builds a Warning with a formatted message.
func Warnf(stage Stage, code WarningCode, format string, args ...any) Warning {
	return Warning{Stage: stage, Code: code, Message: fmt.Sprintf(format, args...)}
}

// HasWarning reports whether ws contains a warning with the given code.
func HasWarning(ws []Warning, code WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
