// Package apply implements the replacement applier of spec.md §4.7: a
// queue of non-overlapping (start, end, text) edits, applied bottom-up
// to the original source buffer.
package apply

import (
	"fmt"
	"sort"

	"github.com/autosv/autosv/pkg/model"
)

// Queue accumulates replacements for one source file and commits them
// atomically.
type Queue struct {
	replacements []model.Replacement
	sourceLen    int
}

// NewQueue creates a queue bound to a source buffer of the given length,
// used to validate that every queued replacement stays in bounds.
func NewQueue(sourceLen int) *Queue {
	return &Queue{sourceLen: sourceLen}
}

// Add queues one replacement. It panics on an out-of-bounds span, since
// that indicates a bug in a caller (collector/generator), not user input.
func (q *Queue) Add(r model.Replacement) {
	if r.Start < 0 || r.Start > r.End || r.End > q.sourceLen {
		panic(fmt.Sprintf("apply: replacement %q out of bounds [%d,%d) for source length %d", r.Label, r.Start, r.End, q.sourceLen))
	}
	q.replacements = append(q.replacements, r)
}

// Len reports how many replacements are queued.
func (q *Queue) Len() int { return len(q.replacements) }

// Validate checks the non-overlap invariant (spec.md §4.7 rule 1) across
// all queued replacements. It is independent of Apply's own ordering.
func (q *Queue) Validate() error {
	sorted := append([]model.Replacement(nil), q.replacements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return fmt.Errorf("apply: overlapping replacements %q [%d,%d) and %q [%d,%d)",
				sorted[i-1].Label, sorted[i-1].Start, sorted[i-1].End,
				sorted[i].Label, sorted[i].Start, sorted[i].End)
		}
	}
	return nil
}

// Apply splices every queued replacement into source, sorted by start
// descending so earlier edits never invalidate later offsets (spec.md
// §4.7). A queue with no replacements returns source unchanged.
func Apply(source []byte, q *Queue) ([]byte, error) {
	if len(q.replacements) == 0 {
		return source, nil
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sorted := append([]model.Replacement(nil), q.replacements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := append([]byte(nil), source...)
	for _, r := range sorted {
		var buf []byte
		buf = append(buf, out[:r.Start]...)
		buf = append(buf, []byte(r.NewText)...)
		buf = append(buf, out[r.End:]...)
		out = buf
	}
	return out, nil
}
