// Package settings holds the engine configuration: resolution limits,
// search budgets, cache sizing and workspace file patterns. Invalid
// values never abort loading; each one is replaced by its default and
// reported as a ValidationError.
package settings

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// Settings configures resolution, workspace search, caching and
// incremental analysis.
type Settings struct {
	// MaxChainDepth bounds var()/$name chain following.
	MaxChainDepth int `koanf:"max-chain-depth" json:"maxChainDepth"`

	// ResolveTimeout bounds a whole resolution call, workspace search
	// included.
	ResolveTimeout time.Duration `koanf:"resolve-timeout" json:"resolveTimeout"`

	// FileListTimeout bounds a single workspace file enumeration.
	FileListTimeout time.Duration `koanf:"file-list-timeout" json:"fileListTimeout"`

	// SearchBatchSize is the number of candidate files examined
	// between cooperative yields during workspace search.
	SearchBatchSize int `koanf:"search-batch-size" json:"searchBatchSize"`

	// MaxSearchFiles caps how many files one workspace search may
	// enumerate.
	MaxSearchFiles int `koanf:"max-search-files" json:"maxSearchFiles"`

	// MaxFileBytes skips candidate files larger than this many bytes.
	MaxFileBytes int64 `koanf:"max-file-bytes" json:"maxFileBytes"`

	// CacheCapacity is the entry capacity of each resolution cache.
	CacheCapacity int `koanf:"cache-capacity" json:"cacheCapacity"`

	// CacheTTL expires resolution cache entries.
	CacheTTL time.Duration `koanf:"cache-ttl" json:"cacheTTL"`

	// FileListTTL expires the cached workspace file list.
	FileListTTL time.Duration `koanf:"file-list-ttl" json:"fileListTTL"`

	// EditBufferLines expands an edit's affected region by this many
	// lines on each side.
	EditBufferLines int `koanf:"edit-buffer-lines" json:"editBufferLines"`

	// MaxChunkLines bounds the size of one background analysis chunk.
	MaxChunkLines int `koanf:"max-chunk-lines" json:"maxChunkLines"`

	// ChunkPause is the cooperative pause between background chunks
	// and between workspace search batches.
	ChunkPause time.Duration `koanf:"chunk-pause" json:"chunkPause"`

	// IncludeGlobs selects the workspace files searched for
	// definitions.
	IncludeGlobs []string `koanf:"include" json:"include"`

	// ExcludeGlobs removes vendor and build output from the search.
	ExcludeGlobs []string `koanf:"exclude" json:"exclude"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log-level" json:"logLevel"`
}

// Default returns the documented defaults.
func Default() Settings {
	return Settings{
		MaxChainDepth:   10,
		ResolveTimeout:  5 * time.Second,
		FileListTimeout: 2 * time.Second,
		SearchBatchSize: 20,
		MaxSearchFiles:  500,
		MaxFileBytes:    1 << 20,
		CacheCapacity:   256,
		CacheTTL:        5 * time.Minute,
		FileListTTL:     30 * time.Second,
		EditBufferLines: 5,
		MaxChunkLines:   100,
		ChunkPause:      10 * time.Millisecond,
		IncludeGlobs:    []string{"**/*.css", "**/*.scss", "**/*.sass"},
		ExcludeGlobs: []string{
			"**/node_modules/**",
			"**/dist/**",
			"**/build/**",
		},
		LogLevel: "info",
	}
}

// ValidationError reports one settings field that was replaced by its
// default.
type ValidationError struct {
	Field   string
	Value   any
	Default any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings: invalid %s %v, using default %v", e.Field, e.Value, e.Default)
}

// Normalize replaces invalid fields with their defaults in place and
// returns one ValidationError per replaced field.
func (s *Settings) Normalize() []*ValidationError {
	def := Default()
	var errs []*ValidationError

	replace := func(field string, value, fallback any, apply func()) {
		apply()
		errs = append(errs, &ValidationError{Field: field, Value: value, Default: fallback})
	}

	if s.MaxChainDepth <= 0 || s.MaxChainDepth > 100 {
		replace("max-chain-depth", s.MaxChainDepth, def.MaxChainDepth, func() { s.MaxChainDepth = def.MaxChainDepth })
	}
	if s.ResolveTimeout <= 0 {
		replace("resolve-timeout", s.ResolveTimeout, def.ResolveTimeout, func() { s.ResolveTimeout = def.ResolveTimeout })
	}
	if s.FileListTimeout <= 0 {
		replace("file-list-timeout", s.FileListTimeout, def.FileListTimeout, func() { s.FileListTimeout = def.FileListTimeout })
	}
	if s.SearchBatchSize <= 0 {
		replace("search-batch-size", s.SearchBatchSize, def.SearchBatchSize, func() { s.SearchBatchSize = def.SearchBatchSize })
	}
	if s.MaxSearchFiles <= 0 {
		replace("max-search-files", s.MaxSearchFiles, def.MaxSearchFiles, func() { s.MaxSearchFiles = def.MaxSearchFiles })
	}
	if s.MaxFileBytes <= 0 {
		replace("max-file-bytes", s.MaxFileBytes, def.MaxFileBytes, func() { s.MaxFileBytes = def.MaxFileBytes })
	}
	if s.CacheCapacity <= 0 {
		replace("cache-capacity", s.CacheCapacity, def.CacheCapacity, func() { s.CacheCapacity = def.CacheCapacity })
	}
	if s.CacheTTL <= 0 {
		replace("cache-ttl", s.CacheTTL, def.CacheTTL, func() { s.CacheTTL = def.CacheTTL })
	}
	if s.FileListTTL <= 0 {
		replace("file-list-ttl", s.FileListTTL, def.FileListTTL, func() { s.FileListTTL = def.FileListTTL })
	}
	if s.EditBufferLines < 0 {
		replace("edit-buffer-lines", s.EditBufferLines, def.EditBufferLines, func() { s.EditBufferLines = def.EditBufferLines })
	}
	if s.MaxChunkLines <= 0 {
		replace("max-chunk-lines", s.MaxChunkLines, def.MaxChunkLines, func() { s.MaxChunkLines = def.MaxChunkLines })
	}
	if s.ChunkPause < 0 {
		replace("chunk-pause", s.ChunkPause, def.ChunkPause, func() { s.ChunkPause = def.ChunkPause })
	}

	if len(s.IncludeGlobs) == 0 {
		replace("include", s.IncludeGlobs, def.IncludeGlobs, func() { s.IncludeGlobs = def.IncludeGlobs })
	} else {
		s.IncludeGlobs = validGlobs("include", s.IncludeGlobs, &errs, func(pattern string) bool {
			return doublestar.ValidatePattern(pattern)
		})
		if len(s.IncludeGlobs) == 0 {
			s.IncludeGlobs = def.IncludeGlobs
		}
	}
	s.ExcludeGlobs = validGlobs("exclude", s.ExcludeGlobs, &errs, func(pattern string) bool {
		_, err := glob.Compile(pattern)
		return err == nil
	})

	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		replace("log-level", s.LogLevel, def.LogLevel, func() { s.LogLevel = def.LogLevel })
	}

	return errs
}

func validGlobs(field string, patterns []string, errs *[]*ValidationError, ok func(string) bool) []string {
	kept := patterns[:0]
	for _, pattern := range patterns {
		if !ok(pattern) {
			*errs = append(*errs, &ValidationError{Field: field, Value: pattern, Default: "(dropped)"})
			continue
		}
		kept = append(kept, pattern)
	}
	return kept
}
