// Package diff classifies the differences between two secret snapshots.
//
// Compare walks the union of keys once and sorts every differing key into
// exactly one of four categories: added, modified, removed or local-only.
// Keys with identical values on both sides are left out.
package diff

import "github.com/illarion/envlock/internal/secrets"

// Change is a key whose value differs between source and target
type Change struct {
	Key string
	Old string // source value
	New string // target value
}

// Result holds the four disjoint categories of a comparison.
// Each category keeps the walk order of Compare.
type Result struct {
	Added     *secrets.Map // in target only
	Modified  []Change     // in both, values differ
	Removed   *secrets.Map // in source only
	LocalOnly *secrets.Map // flagged local-only by the caller
}

// Counts is the number of entries per category
type Counts struct {
	Added     int
	Modified  int
	Removed   int
	LocalOnly int
}

// Compare computes what changed going from source to target.
//
// Keys named in localOnly are reported as local-only with the source value
// (or the target value when source lacks the key), whatever the target
// holds. A local-only key present in neither map is not reported.
//
// Walk order is source keys in source order followed by target-only keys in
// target order.
func Compare(source, target *secrets.Map, localOnly []string) *Result {
	flagged := make(map[string]struct{}, len(localOnly))
	for _, k := range localOnly {
		flagged[k] = struct{}{}
	}

	r := &Result{
		Added:     secrets.New(),
		Removed:   secrets.New(),
		LocalOnly: secrets.New(),
	}

	classify := func(key string) {
		sv, inSource := source.Get(key)
		tv, inTarget := target.Get(key)

		if _, ok := flagged[key]; ok {
			if inSource {
				r.LocalOnly.Set(key, sv)
			} else if inTarget {
				r.LocalOnly.Set(key, tv)
			}
			return
		}

		switch {
		case inSource && !inTarget:
			r.Removed.Set(key, sv)
		case !inSource && inTarget:
			r.Added.Set(key, tv)
		case sv != tv:
			r.Modified = append(r.Modified, Change{Key: key, Old: sv, New: tv})
		}
	}

	for _, k := range source.Keys() {
		classify(k)
	}
	for _, k := range target.Keys() {
		if !source.Has(k) {
			classify(k)
		}
	}

	return r
}

// Counts returns the size of each category
func (r *Result) Counts() Counts {
	return Counts{
		Added:     r.Added.Len(),
		Modified:  len(r.Modified),
		Removed:   r.Removed.Len(),
		LocalOnly: r.LocalOnly.Len(),
	}
}

// Total returns the number of reported keys across all categories
func (c Counts) Total() int {
	return c.Added + c.Modified + c.Removed + c.LocalOnly
}

// Empty reports whether no key was reported at all
func (r *Result) Empty() bool {
	return r.Counts().Total() == 0
}

// HasChanges reports whether anything other than local-only keys differs
func (r *Result) HasChanges() bool {
	c := r.Counts()
	return c.Added+c.Modified+c.Removed > 0
}
