package dedupe

// Option applies a configuration option to the deduper.
type Option func(*memoryDeduper)

// WithMaxSize bounds how many ids are remembered. Zero or less means
// unbounded.
func WithMaxSize(n int) Option {
	return func(d *memoryDeduper) {
		d.capacity = n
	}
}
