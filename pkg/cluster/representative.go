package cluster

import "strings"

// Captioner is implemented by payloads that carry a user caption.
type Captioner interface {
	Caption() string
}

// Favoriter is implemented by payloads that can be flagged as favorites.
type Favoriter interface {
	IsFavorite() bool
}

// Representative picks the member to display for a cluster. It prefers the
// first member with a caption (or, failing that, a display name), then the
// first favorite, then the first member. ok is false for an empty cluster.
func Representative[T any](c GeoCluster[T]) (item Item[T], ok bool) {
	if len(c.Members) == 0 {
		return Item[T]{}, false
	}

	for _, m := range c.Members {
		if hasLabel(m) {
			return m, true
		}
	}
	for _, m := range c.Members {
		if f, isFav := any(m.Payload).(Favoriter); isFav && f.IsFavorite() {
			return m, true
		}
	}
	return c.Members[0], true
}

func hasLabel[T any](m Item[T]) bool {
	if c, ok := any(m.Payload).(Captioner); ok && strings.TrimSpace(c.Caption()) != "" {
		return true
	}
	return strings.TrimSpace(m.Name) != ""
}
