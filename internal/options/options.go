// Package options backs the option types of translog and slip.
//
// translog.Option is Option[*translog.Config] and configures Open and
// DetectByteOrder (byte order, patch count, index size, index cache, logger).
// slip.Option is Option[*slip.config] and configures slip.New. An option that
// rejects its argument, such as a non-positive index size, makes Open or New
// fail with that error before any record is read or curve is built.
package options

// Option mutates the configuration T of a log or a slip function.
type Option[T any] interface {
	apply(T) error
}

// Func is the Option returned by New and NoError.
type Func[T any] struct {
	fn func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.fn(target)
}

// New wraps a validating setter. Returning an error rejects the value.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{fn: fn}
}

// NoError wraps a setter that accepts any value, such as WithLogger.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{fn: func(target T) error {
		fn(target)
		return nil
	}}
}

// Apply runs opts against target in order. Nil options are skipped, so
// callers may pass conditionally built options. The first error is returned
// unchanged.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
