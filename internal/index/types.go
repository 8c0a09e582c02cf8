package index

import "github.com/opencodesearch/codesearch/internal/hybrid"

// Mode selects which stream(s) a search draws from.
type Mode string

const (
	ModeLexical Mode = "lexical"
	ModeVector  Mode = "vector"
	ModeHybrid  Mode = "hybrid"
)

// IndexOptions configures one call to Index.
type IndexOptions struct {
	// OnProgress, if set, is invoked on every stage transition and on
	// per-file advances within a stage.
	OnProgress func(Snapshot)
}

// Snapshot mirrors async.Status without exposing the async package to
// callers of this one; it is the public progress shape for onProgress.
type Snapshot struct {
	IsIndexing   bool
	Stage        string
	Progress     int
	TotalFiles   int
	IndexedFiles int
	CurrentFile  string
	Error        string

	// DocCount, TermCount, and VectorCount extend the base status with an
	// index-info surface: the current size of the lexical and vector
	// indices, independent of whether a run is currently in progress.
	DocCount    int
	TermCount   int
	VectorCount int
}

// SearchOptions configures a Search call. Zero value selects mode hybrid
// and limit 10; VectorWeight and MinScore are used as given (a zero
// VectorWeight makes hybrid fusion purely lexical). DefaultSearchOptions
// supplies vectorWeight 0.7 and minScore 0.01.
type SearchOptions struct {
	Limit         int     // default 10
	Mode          Mode    // default ModeHybrid
	VectorWeight  float64 // DefaultSearchOptions uses 0.7; ignored outside ModeHybrid
	MinScore      float64 // DefaultSearchOptions uses 0.01
	IncludeContent bool
	Filter        func(path string) bool
}

// DefaultSearchOptions returns the spec's documented defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:        10,
		Mode:         ModeHybrid,
		VectorWeight: 0.7,
		MinScore:     0.01,
	}
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.Mode == "" {
		o.Mode = ModeHybrid
	}
	return o
}

// Result is one ranked match returned from Search, per §6's result
// envelope.
type Result struct {
	Path           string
	Score          float64
	Provenance     hybrid.Provenance
	MatchedTerms   []string
	Similarity     float64
	ContentPreview string
	Language       string
}
