package state

import "time"

// Phase is where a Resource is in its fetch cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// View is what a view should render for a Resource.
type View int

const (
	ViewLoading View = iota
	ViewError
	ViewEmpty
	ViewPopulated
)

func (v View) String() string {
	switch v {
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewPopulated:
		return "populated"
	default:
		return "loading"
	}
}

// offlineAfter is the number of consecutive failures that mark a resource
// offline.
const offlineAfter = 2

// Resource holds the latest fetched value of T together with the outcome of
// the most recent fetch. The zero value is Idle with no data.
//
// A failed fetch never clears data stored by an earlier success.
type Resource[T any] struct {
	data     T
	hasData  bool
	phase    Phase
	err      error
	failures int
	updated  time.Time
}

// Begin marks a fetch as in flight. Stored data is kept.
func (r *Resource[T]) Begin() {
	r.phase = PhaseLoading
}

// Succeed replaces the stored value and clears any recorded error.
func (r *Resource[T]) Succeed(v T) {
	r.data = v
	r.hasData = true
	r.phase = PhaseReady
	r.err = nil
	r.failures = 0
	r.updated = time.Now()
}

// Fail records err and leaves previously stored data untouched.
func (r *Resource[T]) Fail(err error) {
	r.phase = PhaseFailed
	r.err = err
	r.failures++
	r.updated = time.Now()
}

// Set applies the result of a fetch: Fail when err is non-nil, Succeed
// otherwise.
func (r *Resource[T]) Set(v T, err error) {
	if err != nil {
		r.Fail(err)
		return
	}
	r.Succeed(v)
}

// Data returns the last successfully fetched value.
func (r Resource[T]) Data() (T, bool) {
	return r.data, r.hasData
}

// Value returns the stored value, or the zero T when nothing was fetched yet.
func (r Resource[T]) Value() T {
	return r.data
}

// HasData reports whether any fetch has succeeded.
func (r Resource[T]) HasData() bool { return r.hasData }

// Err returns the error of the most recent fetch, nil after a success.
func (r Resource[T]) Err() error { return r.err }

// Failures counts fetches that failed since the last success.
func (r Resource[T]) Failures() int { return r.failures }

// Offline is true once two fetches in a row have failed.
func (r Resource[T]) Offline() bool { return r.failures >= offlineAfter }

// Loading reports whether a fetch is in flight.
func (r Resource[T]) Loading() bool { return r.phase == PhaseLoading }

// Updated is when the last fetch settled.
func (r Resource[T]) Updated() time.Time { return r.updated }

// View derives the render state. empty may be nil when T has no notion of
// emptiness.
func (r Resource[T]) View(empty func(T) bool) View {
	if !r.hasData {
		if r.phase == PhaseFailed {
			return ViewError
		}
		return ViewLoading
	}
	if empty != nil && empty(r.data) {
		return ViewEmpty
	}
	return ViewPopulated
}

// Len is an emptiness func for slice resources.
func Len[E any](v []E) bool {
	return len(v) == 0
}
