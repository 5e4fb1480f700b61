package types

import "time"

// Vocabulary holds the keyword lists used by the extraction heuristics.
// Matching is case-insensitive substring matching; membership is content,
// not code, and can be overridden from a YAML file.
type Vocabulary struct {
	// ThoughtExperimentKeywords classify a text as a thought experiment when
	// any one of them occurs.
	ThoughtExperimentKeywords []string `json:"thought_experiment_keywords" yaml:"thought_experiment_keywords"`

	// LabelColumns identify the table column holding chart labels
	// (state, outcome, scenario).
	LabelColumns []string `json:"label_columns" yaml:"label_columns"`

	// ValueColumns identify the table column holding chart values
	// (probability, frequency, value).
	ValueColumns []string `json:"value_columns" yaml:"value_columns"`
}

// ExtractionConfig holds settings for the extractor.
type ExtractionConfig struct {
	// VocabularyFile is an optional YAML file overriding the default vocabulary.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty"`

	// TypeHint is applied when the caller gives none (e.g. "thought_experiment").
	TypeHint ContentType `json:"type_hint,omitempty" yaml:"type_hint,omitempty"`
}

// BatchConfig holds settings for the batch extraction stage.
type BatchConfig struct {
	// ResponsesDir contains the raw response files (*.md, *.txt) and
	// optional <id>.hint sidecars.
	ResponsesDir string `json:"responses_dir" yaml:"responses_dir"`

	// StoreDir is the base directory for output (contains extracted/).
	StoreDir string `json:"store_dir" yaml:"store_dir"`

	// TypeHint is the default hint for files without a sidecar.
	TypeHint ContentType `json:"type_hint,omitempty" yaml:"type_hint,omitempty"`

	// Workers is the number of concurrent extractions (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// StoreConfig holds settings for the response store.
type StoreConfig struct {
	// StoreDir is the base directory (contains extracted/, index/).
	StoreDir string `json:"store_dir" yaml:"store_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// FetchConfig holds settings for retrieving response text over HTTP.
type FetchConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxBodyBytes caps how much of a response body is read (default 2 MB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// SecretsDir holds the optional response-api-token file.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Batch      BatchConfig      `json:"batch" yaml:"batch"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
}
