package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Feed is a background data source owned by one view. It is started when
// the view becomes active and stopped when the view is left.
type Feed interface {
	Start(ctx context.Context) error
	Stop()
}

// Relay lets feeds wake the UI after they write to the store. Notify is a
// no-op until Run attaches a program, and after it detaches. It never
// blocks, so a feed may call it while the UI is stopping that feed.
type Relay struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewRelay returns an unattached relay.
func NewRelay() *Relay {
	return &Relay{}
}

// Notify asks the UI to re-read the store.
func (r *Relay) Notify() {
	if r == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		go p.Send(storeUpdatedMsg{})
	}
}

func (r *Relay) attach(p *tea.Program) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

func (r *Relay) detach() {
	r.attach(nil)
}

// feedSet tracks which feed is running. It is shared by every copy of the
// Model, so it is held by pointer.
type feedSet struct {
	feeds  map[View]Feed
	active Feed
	err    error
}

func newFeedSet(feeds map[View]Feed) *feedSet {
	fs := &feedSet{feeds: make(map[View]Feed, len(feeds))}
	for v, f := range feeds {
		if f != nil {
			fs.feeds[v] = f
		}
	}
	return fs
}

// switchTo stops the running feed and starts the one owned by v, if any.
func (fs *feedSet) switchTo(ctx context.Context, v View) error {
	next := fs.feeds[v]
	if fs.active != nil && fs.active != next {
		fs.active.Stop()
		fs.active = nil
	}
	fs.err = nil
	if next == nil || fs.active == next {
		return nil
	}
	if err := next.Start(ctx); err != nil {
		fs.err = err
		return err
	}
	fs.active = next
	return nil
}

// stopAll stops every feed. Stop is idempotent on all feed types.
func (fs *feedSet) stopAll() {
	for _, f := range fs.feeds {
		f.Stop()
	}
	fs.active = nil
}

// restart stops and restarts the feed owned by v so it fetches immediately.
// It reports false when v has no feed.
func (fs *feedSet) restart(ctx context.Context, v View) (bool, error) {
	f := fs.feeds[v]
	if f == nil {
		return false, nil
	}
	if fs.active == f {
		f.Stop()
		fs.active = nil
	}
	return true, fs.switchTo(ctx, v)
}
