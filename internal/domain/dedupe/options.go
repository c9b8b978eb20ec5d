package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*fifoDeduper)

// WithMaxSize sets the maximum number of keys to remember.
// If maxSize > 0 the oldest key is evicted first once the bound is reached.
// If maxSize <= 0 the deduper is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *fifoDeduper) {
		d.maxSize = maxSize
	}
}
