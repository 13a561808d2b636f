// Package interaction tracks per-session liked and bookmarked articles.
package interaction

import "sort"

// Set is an immutable set of article identities.
// The zero value is an empty set.
type Set struct {
	items map[string]struct{}
}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := Set{items: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.items[id] = struct{}{}
	}
	return s
}

// Toggle returns a new set with id added if absent or removed if present.
// s is left unchanged. Toggle(Toggle(s, id), id) equals s.
func Toggle(s Set, id string) Set {
	next := Set{items: make(map[string]struct{}, len(s.items)+1)}
	for k := range s.items {
		next.items[k] = struct{}{}
	}
	if _, ok := next.items[id]; ok {
		delete(next.items, id)
	} else {
		next.items[id] = struct{}{}
	}
	return next
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Len returns the number of identities in the set.
func (s Set) Len() int {
	return len(s.items)
}

// Items returns the identities in sorted order.
func (s Set) Items() []string {
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same identities.
func (s Set) Equal(other Set) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for k := range s.items {
		if _, ok := other.items[k]; !ok {
			return false
		}
	}
	return true
}

// State holds the two independent interaction sets of one session.
type State struct {
	Liked      Set
	Bookmarked Set
}

// ToggleLike flips the liked flag of url and reports the new value.
func (st *State) ToggleLike(url string) bool {
	st.Liked = Toggle(st.Liked, url)
	return st.Liked.Contains(url)
}

// ToggleBookmark flips the bookmarked flag of url and reports the new value.
func (st *State) ToggleBookmark(url string) bool {
	st.Bookmarked = Toggle(st.Bookmarked, url)
	return st.Bookmarked.Contains(url)
}
