// Package poll runs a fetch on a fixed cadence while a view is active.
//
// A Poller is created stopped. Start issues one fetch right away and one per
// interval after that; Stop gives the ticker back. Fetches that are already
// running when Stop is called are allowed to finish and deliver their result,
// which callers treat as ordinary last-write-wins updates.
package poll
