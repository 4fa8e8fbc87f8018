package editor

import (
	"sync"
	"time"

	"orcavox/internal/analytics"
	"orcavox/internal/domain"
)

// PatchOp is one JSON-patch style operation in an outbound patch event.
type PatchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// PatchEvent describes a manual override to an external host, e.g. to let
// the conversational session know the user changed the quote by hand.
type PatchEvent struct {
	Type string    `json:"type"`
	Ops  []PatchOp `json:"ops"`
}

// EditRecord is one committed field mutation. The log is append-only until
// the next commit, discard or wholesale document replacement.
type EditRecord struct {
	Path      string      `json:"field_path"`
	OldValue  interface{} `json:"old_value"`
	NewValue  interface{} `json:"new_value"`
	Timestamp time.Time   `json:"timestamp"`
}

// Tracker owns the working document and a baseline snapshot of it, records
// every effective field edit against the baseline and emits patch events
// for them. A tracker with no recorded edits is clean; the first effective
// edit makes it dirty, and Commit or Discard make it clean again.
type Tracker struct {
	mu       sync.Mutex
	baseline *domain.BudgetDocument
	working  *domain.BudgetDocument
	log      []EditRecord
	counts   map[string]int
	rec      *analytics.Recorder
	sink     func(PatchEvent)
}

// NewTracker creates an empty tracker reporting edits to rec.
func NewTracker(rec *analytics.Recorder) *Tracker {
	return &Tracker{rec: rec, counts: map[string]int{}}
}

// SetPatchSink installs the consumer of outbound patch events. A nil sink
// silently drops them.
func (t *Tracker) SetPatchSink(sink func(PatchEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// Reset replaces the working document wholesale, snapshots it as the new
// baseline and clears the edit log.
func (t *Tracker) Reset(doc *domain.BudgetDocument) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.working = doc
	t.baseline = doc.Clone()
	t.clearLog()
}

// Document returns the current working document, or nil when no draft has
// been loaded yet.
func (t *Tracker) Document() *domain.BudgetDocument {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.working
}

// Baseline returns the snapshot the working document is diffed against.
func (t *Tracker) Baseline() *domain.BudgetDocument {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baseline
}

// Apply writes raw user input at a dot-delimited field path. A no-op edit
// (the sanitized value equals the current one) records nothing and returns
// a nil patch event. An effective edit appends to the log, bumps the
// per-field counter, notifies analytics, recomputes totals and emits one
// replace patch op.
func (t *Tracker) Apply(path, input string) (*domain.FieldChange, *PatchEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.working == nil {
		return nil, nil, domain.ErrNoDraft
	}

	change, err := t.working.ApplyFieldEdit(path, input)
	if err != nil {
		return nil, nil, err
	}
	if !change.Changed {
		return change, nil, nil
	}

	t.working.RecalculateTotals()

	t.log = append(t.log, EditRecord{
		Path:      change.Path,
		OldValue:  change.OldValue,
		NewValue:  change.NewValue,
		Timestamp: time.Now(),
	})
	t.counts[change.Path]++
	t.rec.RecordFieldEdit(change.Path, change.OldValue, change.NewValue)

	event := &PatchEvent{
		Type: "pdf_delta",
		Ops: []PatchOp{{
			Op:    "replace",
			Path:  domain.PatchPath(change.Path),
			Value: change.NewValue,
		}},
	}
	if t.sink != nil {
		t.sink(*event)
	}
	return change, event, nil
}

// Add appends a default entry to a document section and recomputes totals.
func (t *Tracker) Add(section domain.Section) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.working == nil {
		return domain.ErrNoDraft
	}
	return t.working.AddToSection(section)
}

// Remove deletes the entry at index from a document section and recomputes
// totals.
func (t *Tracker) Remove(section domain.Section, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.working == nil {
		return domain.ErrNoDraft
	}
	return t.working.RemoveFromSection(section, index)
}

// Commit promotes the working document to the new baseline and clears the
// edit log. Commit is atomic over the whole document.
func (t *Tracker) Commit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.working == nil {
		return
	}
	t.baseline = t.working.Clone()
	t.clearLog()
}

// Discard restores the working document from the baseline and clears the
// edit log.
func (t *Tracker) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.baseline == nil {
		return
	}
	t.working = t.baseline.Clone()
	t.clearLog()
}

// Clear drops the working document, the baseline and the edit log.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.working = nil
	t.baseline = nil
	t.clearLog()
}

// IsDirty reports whether any effective edit has been recorded since the
// last commit, discard or reset.
func (t *Tracker) IsDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.log) > 0
}

// IsChanged reports whether the value at path differs between the working
// document and the baseline. Paths missing from both documents compare
// equal.
func (t *Tracker) IsChanged(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.working == nil || t.baseline == nil {
		return false
	}
	cur, curErr := t.working.ValueAt(path)
	base, baseErr := t.baseline.ValueAt(path)
	if curErr != nil && baseErr != nil {
		return false
	}
	if curErr != nil || baseErr != nil {
		return true
	}
	return cur.Raw != base.Raw
}

// Log returns a copy of the edit records since the last clean point.
func (t *Tracker) Log() []EditRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]EditRecord(nil), t.log...)
}

// EditCount returns how many effective edits path received since the last
// clean point.
func (t *Tracker) EditCount(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[path]
}

func (t *Tracker) clearLog() {
	t.log = nil
	t.counts = map[string]int{}
}
