package api

// genericError is reported by a Result that carries no message, including the
// zero value.
const genericError = "An error occurred"

// Result is the outcome of a single request: either data or an error string.
// Fields are unexported so a Result can only be built through OK or Fail.
type Result[T any] struct {
	data  T
	err   string
	ok    bool
	empty bool // success with a null body
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{data: v, ok: true}
}

// OKEmpty is a success whose body carried no value (JSON null).
func OKEmpty[T any]() Result[T] {
	return Result[T]{ok: true, empty: true}
}

// Fail wraps an error message. An empty message is replaced by a generic one.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = genericError
	}
	return Result[T]{err: msg}
}

// IsOK reports whether the request succeeded.
func (r Result[T]) IsOK() bool { return r.ok }

// HasData reports whether the request succeeded with a non-null value.
func (r Result[T]) HasData() bool { return r.ok && !r.empty }

// Data returns the value; it is the zero value for failed or empty results.
func (r Result[T]) Data() T { return r.data }

// Err returns the error message, or "" for successful results.
func (r Result[T]) Err() string {
	if r.ok {
		return ""
	}
	if r.err == "" {
		return genericError
	}
	return r.err
}
