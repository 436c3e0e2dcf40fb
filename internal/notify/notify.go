package notify

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Kind selects a toast's styling and lifetime.
type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
	KindInfo
)

const (
	successTTL = 2 * time.Second
	errorTTL   = 4 * time.Second
	infoTTL    = 3 * time.Second
)

// TTL returns how long a toast of this kind stays up. Zero means until it is
// replaced or dismissed.
func (k Kind) TTL() time.Duration {
	switch k {
	case KindSuccess:
		return successTTL
	case KindError:
		return errorTTL
	case KindInfo:
		return infoTTL
	default:
		return 0
	}
}

// Toast is a transient notification.
type Toast struct {
	ID      string
	Kind    Kind
	Message string
	Created time.Time
}

// Expired reports whether the toast should be removed at now.
func (t Toast) Expired(now time.Time) bool {
	ttl := t.Kind.TTL()
	return ttl > 0 && !now.Before(t.Created.Add(ttl))
}

// Center is the list of visible toasts. It is not safe for concurrent use;
// the UI mutates it from its update loop only.
type Center struct {
	toasts []Toast
	now    func() time.Time
	limit  int
}

// NewCenter returns an empty Center that evicts old toasts beyond limit.
func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = 4
	}
	return &Center{now: time.Now, limit: limit}
}

// Loading shows a toast that stays until replaced and returns its id.
func (c *Center) Loading(msg string) string {
	return c.Show("", KindLoading, msg)
}

// Success shows or replaces id with a success toast.
func (c *Center) Success(id, msg string) string {
	return c.Show(id, KindSuccess, msg)
}

// Error shows or replaces id with an error toast.
func (c *Center) Error(id, msg string) string {
	return c.Show(id, KindError, msg)
}

// Info shows a neutral toast.
func (c *Center) Info(msg string) string {
	return c.Show("", KindInfo, msg)
}

// Show adds a toast. When id names an existing toast it is replaced in place
// and its lifetime restarts; an empty id allocates a new one.
func (c *Center) Show(id string, kind Kind, msg string) string {
	t := Toast{ID: id, Kind: kind, Message: msg, Created: c.now()}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if i := c.index(t.ID); i >= 0 {
		c.toasts[i] = t
		return t.ID
	}
	c.toasts = append(c.toasts, t)
	c.evict()
	return t.ID
}

// evict drops the oldest toasts over the limit. Loading toasts and the newest
// toast are never evicted, so the list may stay over the limit.
func (c *Center) evict() {
	for len(c.toasts) > c.limit {
		older := c.toasts[:len(c.toasts)-1]
		i := slices.IndexFunc(older, func(t Toast) bool { return t.Kind != KindLoading })
		if i < 0 {
			return
		}
		c.toasts = slices.Delete(c.toasts, i, i+1)
	}
}

// Prune drops expired toasts and reports whether anything changed.
func (c *Center) Prune() bool {
	now := c.now()
	before := len(c.toasts)
	c.toasts = slices.DeleteFunc(c.toasts, func(t Toast) bool { return t.Expired(now) })
	return len(c.toasts) != before
}

// Active returns the visible toasts, oldest first.
func (c *Center) Active() []Toast {
	return slices.Clone(c.toasts)
}

// Len reports the number of visible toasts.
func (c *Center) Len() int { return len(c.toasts) }

func (c *Center) index(id string) int {
	return slices.IndexFunc(c.toasts, func(t Toast) bool { return t.ID == id })
}
