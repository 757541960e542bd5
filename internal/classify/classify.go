package classify

import "github.com/cristianoliveira/area-links/internal/geometry"

// Status is the per-frame classification of one candidate.
type Status int

const (
	// StatusUntouched marks a candidate outside the selection rectangle.
	StatusUntouched Status = iota
	StatusHighlighted
	// StatusDuplicate covers both in-selection repeats and history hits.
	StatusDuplicate
	StatusExcluded
	StatusLimitExceeded
)

// String returns the marker name for the status.
func (s Status) String() string {
	switch s {
	case StatusHighlighted:
		return "highlighted"
	case StatusDuplicate:
		return "duplicate"
	case StatusExcluded:
		return "excluded"
	case StatusLimitExceeded:
		return "limit-exceeded"
	default:
		return "untouched"
	}
}

// Set is a string lookup set.
type Set map[string]struct{}

// NewSet builds a set from items.
func NewSet(items []string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Options is the settings snapshot a classification pass depends on.
type Options struct {
	CopyMode bool
	// TabLimit caps highlighted candidates in open mode. Copy mode has no limit.
	TabLimit int

	RemoveDuplicatesInSelection bool
	CheckDuplicatesOnCopy       bool
	ApplyExclusionsOnCopy       bool
	UseHistory                  bool
	UseCopyHistory              bool

	LinkHistory Set
	CopyHistory Set
	Exclusions  Exclusions
}

func (o Options) checkExclusions() bool {
	return !o.CopyMode || o.ApplyExclusionsOnCopy
}

func (o Options) inHistory(url string) bool {
	if o.CopyMode {
		return o.UseCopyHistory && o.CopyHistory.Has(url)
	}
	return o.UseHistory && o.LinkHistory.Has(url)
}

func (o Options) dedup() bool {
	if o.CopyMode {
		return o.CheckDuplicatesOnCopy
	}
	return o.RemoveDuplicatesInSelection
}

// Result is the status of the candidate at Index for the current pass.
type Result struct {
	Index  int
	Status Status
}

// Intersecting returns the indexes of candidates whose rectangle intersects
// rect, in encounter order.
func Intersecting(cands []Candidate, rect geometry.Rect) []int {
	var idx []int
	for i := range cands {
		if cands[i].Rect.Intersects(rect) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Classify assigns a status to every candidate intersecting rect. Results
// follow encounter order, so the first occurrence of a URL wins and later
// ones are duplicates. The pass is recomputed from scratch on every call.
func Classify(cands []Candidate, rect geometry.Rect, opts Options) []Result {
	idx := Intersecting(cands, rect)
	if len(idx) == 0 {
		return nil
	}

	results := make([]Result, 0, len(idx))
	seen := make(Set)
	highlighted := 0
	for _, i := range idx {
		c := &cands[i]
		status := StatusHighlighted
		switch {
		case opts.checkExclusions() && opts.Exclusions.IsExcluded(c):
			status = StatusExcluded
		case opts.inHistory(c.URL):
			status = StatusDuplicate
		case opts.dedup() && seen.Has(c.URL):
			status = StatusDuplicate
		case !opts.CopyMode && highlighted >= opts.TabLimit:
			status = StatusLimitExceeded
		}
		if status == StatusHighlighted {
			highlighted++
			seen[c.URL] = struct{}{}
		}
		results = append(results, Result{Index: i, Status: status})
	}
	return results
}

// HighlightedURLs returns the URLs of highlighted results in result order.
func HighlightedURLs(cands []Candidate, results []Result) []string {
	var urls []string
	for _, r := range results {
		if r.Status == StatusHighlighted {
			urls = append(urls, cands[r.Index].URL)
		}
	}
	return urls
}
