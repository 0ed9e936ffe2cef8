package queue

// MaxCapacity is the largest buffer WithCapacity accepts.
const MaxCapacity = 1 << 17

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the buffer size. Non-positive values keep the default and
// values above MaxCapacity are clamped.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		switch {
		case n <= 0:
		case n > MaxCapacity:
			q.capacity = MaxCapacity
		default:
			q.capacity = n
		}
	}
}
