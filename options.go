package zimgo

import (
	"runtime"

	"github.com/hupe1980/zimgo/codec"
)

// DefaultClusterSize is the target uncompressed size of a cluster.
// Larger clusters compress better; smaller ones give finer random
// access. 2 MiB matches common ZIM tooling.
const DefaultClusterSize = 2 << 20

type creatorOptions struct {
	compression   codec.Kind
	clusterSize   int64
	workers       int
	indexing      bool
	indexLanguage string
	verbose       bool
	logger        *Logger
	memoryLimit   int64
}

func defaultCreatorOptions() creatorOptions {
	return creatorOptions{
		compression: codec.Zstd,
		clusterSize: DefaultClusterSize,
		workers:     runtime.NumCPU(),
	}
}

// Option configures a Creator. Options apply only in the CONFIGURING
// state, before Start.
type Option func(*creatorOptions)

// WithCompression sets the codec for compressed clusters.
func WithCompression(kind codec.Kind) Option {
	return func(o *creatorOptions) { o.compression = kind }
}

// WithClusterSize sets the target uncompressed cluster size in bytes.
func WithClusterSize(size int64) Option {
	return func(o *creatorOptions) {
		if size > 0 {
			o.clusterSize = size
		}
	}
}

// WithWorkers bounds the number of concurrent cluster compression
// workers. Defaults to the number of CPUs.
func WithWorkers(n int) Option {
	return func(o *creatorOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithIndexing enables full-text indexing of front articles. language
// is an ISO 639-3 code recorded with the index (e.g. "eng").
func WithIndexing(language string) Option {
	return func(o *creatorOptions) {
		o.indexing = true
		o.indexLanguage = language
	}
}

// WithVerbose enables debug-level creator logging.
func WithVerbose(verbose bool) Option {
	return func(o *creatorOptions) { o.verbose = verbose }
}

// WithLogger sets the creator logger. Defaults to a no-op logger
// unless verbose is enabled.
func WithLogger(logger *Logger) Option {
	return func(o *creatorOptions) { o.logger = logger }
}

// WithMemoryLimit caps the in-flight uncompressed cluster bytes held by
// the write pipeline. Zero means unbounded.
func WithMemoryLimit(bytes int64) Option {
	return func(o *creatorOptions) { o.memoryLimit = bytes }
}
