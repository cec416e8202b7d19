// Package index implements an in-memory ranked set of texts with prefix lookup.
package index

import (
	"cmp"
	"slices"
	"strings"
)

// Key identifies an entry. Callers derive it from the entry text.
type Key int64

// Entry is one ranked row of the index.
type Entry struct {
	Key    Key
	Text   string
	Rating int64
}

// Index keeps its entries ordered by ascending rating, so lower ratings rank
// first. Ties are broken by ascending key. An Index is not safe for
// concurrent use; its owner serializes access.
type Index struct {
	byKey map[Key]*Entry
	order []*Entry
}

// New returns an empty Index.
func New() *Index {
	return &Index{byKey: make(map[Key]*Entry)}
}

func compareEntries(a, b *Entry) int {
	if c := cmp.Compare(a.Rating, b.Rating); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

// Add inserts an entry with rating 0, or overwrites the text of an existing
// entry while keeping its rating.
func (x *Index) Add(key Key, text string) {
	if e, ok := x.byKey[key]; ok {
		e.Text = text
		return
	}
	e := &Entry{Key: key, Text: text}
	x.byKey[key] = e
	x.attach(e)
}

// SetRating moves an existing entry to a new rating. It reports false and
// leaves the index untouched when key is absent.
func (x *Index) SetRating(key Key, rating int64) bool {
	e, ok := x.byKey[key]
	if !ok {
		return false
	}
	if e.Rating == rating {
		return true
	}
	x.detach(e)
	e.Rating = rating
	x.attach(e)
	return true
}

// Remove deletes the entry for key if present.
func (x *Index) Remove(key Key) {
	e, ok := x.byKey[key]
	if !ok {
		return
	}
	x.detach(e)
	delete(x.byKey, key)
}

// Has reports whether key is present.
func (x *Index) Has(key Key) bool {
	_, ok := x.byKey[key]
	return ok
}

// Text returns the text stored for key.
func (x *Index) Text(key Key) (string, bool) {
	e, ok := x.byKey[key]
	if !ok {
		return "", false
	}
	return e.Text, true
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.order)
}

// Search returns up to limit entries whose text starts with prefix, best
// ranked first. Matching is case-sensitive on raw bytes.
func (x *Index) Search(prefix string, limit int) []Entry {
	return x.collect(limit, func(e *Entry) bool {
		return strings.HasPrefix(e.Text, prefix)
	})
}

// SearchEmpty returns the limit best ranked entries regardless of text.
func (x *Index) SearchEmpty(limit int) []Entry {
	return x.collect(limit, nil)
}

func (x *Index) collect(limit int, match func(*Entry) bool) []Entry {
	if limit <= 0 {
		return []Entry{}
	}
	result := make([]Entry, 0, min(limit, len(x.order)))
	for _, e := range x.order {
		if match != nil && !match(e) {
			continue
		}
		result = append(result, *e)
		if len(result) == limit {
			break
		}
	}
	return result
}

func (x *Index) attach(e *Entry) {
	i, _ := slices.BinarySearchFunc(x.order, e, compareEntries)
	x.order = slices.Insert(x.order, i, e)
}

func (x *Index) detach(e *Entry) {
	if i, ok := slices.BinarySearchFunc(x.order, e, compareEntries); ok {
		x.order = slices.Delete(x.order, i, i+1)
	}
}
