// Package state holds fetched backend data between polls.
//
// # Overview
//
// Every view in scout renders one of four states for the data it depends on:
// loading, error, empty or populated. Resource captures the inputs to that
// decision for a single fetched value:
//
//	var authors state.Resource[[]api.Author]
//	authors.Begin()
//	authors.Set(client.FetchAuthors(ctx))
//	switch authors.View(state.Len[api.Author]) {
//	case state.ViewLoading, state.ViewError, state.ViewEmpty, state.ViewPopulated:
//	}
//
// # Failure Semantics
//
// A failed fetch records its error and bumps the consecutive failure count
// but keeps whatever the last success stored, so a flaky backend never blanks
// a populated view. Two failures in a row mark the resource offline; the next
// success resets the count.
//
//	Idle ──Begin──> Loading ──Succeed──> Ready
//	                   │                   │
//	                   └──Fail──> Failed <─┘ (data kept)
//
// # Store
//
// Pollers run fetches on their own goroutines, so the stats, status and logs
// resources they write live in Store behind a sync.RWMutex. Snapshot returns
// copies (log slices and error values included) that the UI can read without
// holding the lock.
//
// Resources owned by a single goroutine, such as the author list and the
// settings form source held in the Bubble Tea model, are used directly
// without a Store.
package state
