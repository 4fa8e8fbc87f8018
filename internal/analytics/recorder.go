package analytics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxSamples bounds every numeric time series; the oldest samples are
// evicted first.
const maxSamples = 100

// EditEvent is a single recorded field edit.
type EditEvent struct {
	Field     string      `json:"field"`
	OldValue  interface{}  `json:"old_value"`
	NewValue  interface{}  `json:"new_value"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id"`
}

// GeneratedInfo describes a freshly generated budget document.
type GeneratedInfo struct {
	ItemsCount int
	TotalValue float64
	Method     string
}

// ParseFailure describes a failed strict-JSON parse attempt.
type ParseFailure struct {
	Error       string
	Duration    float64
	TextLength  int
	TextPreview string
}

// FallbackSample carries timing for one heuristic-extraction run.
type FallbackSample struct {
	Duration   float64
	TextLength int
	Success    bool
	Method     string
}

// TotalSample carries end-to-end timing for one routed response.
type TotalSample struct {
	JSONParsing     float64
	FallbackParsing float64
	TotalTime       float64
	Efficiency      float64
	TextLength      int
	Method          string
	Success         bool
}

// SlowWarning is emitted when a parse ran well past its expected time.
type SlowWarning struct {
	ActualTime     float64
	ExpectedTime   float64
	SlownessFactor float64
	TextLength     int
	Method         string
}

// BreakdownSample carries per-step timings of a heuristic extraction.
type BreakdownSample struct {
	Steps          map[string]float64
	SlowestStep    string
	SlowestTime    float64
	ItemsExtracted int
	TextLength     int
}

// Recorder is a passive, append-only observer of the parsing and editing
// pipeline. It never fails toward its callers: recording problems are
// swallowed so they cannot affect document correctness.
type Recorder struct {
	mu sync.Mutex

	sessionID   string
	editCounts  map[string]int
	editHistory []EditEvent

	counters    map[string]int
	subCounters map[string]map[string]int
	series      map[string][]float64
}

// NewRecorder creates an empty Recorder with a fresh session identifier.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.resetLocked()
	return r
}

func newSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

func (r *Recorder) resetLocked() {
	r.sessionID = newSessionID()
	r.editCounts = map[string]int{}
	r.editHistory = nil
	r.counters = map[string]int{}
	r.subCounters = map[string]map[string]int{}
	r.series = map[string][]float64{}
}

// Reset clears all counters, series and edit history and starts a new
// session. Safe to call at any time.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

// ResetEdits clears the edit log and per-field counters while keeping
// pipeline counters, series and the session identifier. Called when a new
// draft replaces the document wholesale.
func (r *Recorder) ResetEdits() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.editCounts = map[string]int{}
	r.editHistory = nil
}

// SessionID returns the current session identifier.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// RecordFieldEdit registers one edit or pipeline event under the given
// metric key. User edits use the document field path as the key; pipeline
// stages use the reserved keys routed below.
func (r *Recorder) RecordFieldEdit(field string, oldValue, newValue interface{}) {
	// recording must never take down the caller
	defer func() { _ = recover() }()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.editCounts[field]++
	r.editHistory = append(r.editHistory, EditEvent{
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: time.Now(),
		SessionID: r.sessionID,
	})

	r.routePipelineMetric(field, newValue)
}

// routePipelineMetric fans reserved metric keys out into counters and
// bounded series. Caller holds the lock.
func (r *Recorder) routePipelineMetric(field string, value interface{}) {
	switch field {
	case "ai_response_type":
		if s, ok := value.(string); ok {
			r.incrementSub("pipeline_responses_by_type", s)
		}

	case "budget_generated":
		r.increment("budgets_generated_total")
		if info, ok := value.(GeneratedInfo); ok && info.Method != "" {
			r.incrementSub("budgets_by_method", info.Method)
		}

	case "text_extraction_success":
		if ok, isBool := value.(bool); isBool {
			if ok {
				r.increment("text_extraction_success")
			} else {
				r.increment("text_extraction_failure")
			}
		}

	case "json_parsing_failure":
		r.increment("json_parsing_failures")
		if f, ok := value.(ParseFailure); ok && f.Error != "" {
			r.incrementSub("json_error_types", strings.SplitN(f.Error, " ", 2)[0])
		}

	case "parser_performance_json_ms":
		if ms, ok := toFloat(value); ok {
			r.recordSample("json_parsing_time", ms)
		}

	case "parser_performance_fallback_ms":
		if s, ok := value.(FallbackSample); ok {
			r.recordSample("fallback_parsing_time", s.Duration)
			if s.Success {
				r.increment("fallback_success")
			} else {
				r.increment("fallback_failure")
			}
		}

	case "parser_performance_total":
		if s, ok := value.(TotalSample); ok {
			r.recordSample("total_parsing_time", s.TotalTime)
			r.recordSample("parsing_efficiency", s.Efficiency)
			r.incrementSub("parsing_methods", s.Method)
			if s.TotalTime > 100 {
				r.increment("slow_parsing_instances")
			} else if s.TotalTime < 10 {
				r.increment("fast_parsing_instances")
			}
		}

	case "parser_slow_warning":
		r.increment("performance_warnings")
		if w, ok := value.(SlowWarning); ok {
			r.recordSample("slowness_factor", w.SlownessFactor)
		}

	case "text_parsing_breakdown":
		if b, ok := value.(BreakdownSample); ok && b.SlowestStep != "" {
			r.incrementSub("slowest_parsing_steps", b.SlowestStep)
			r.recordSample("step_"+b.SlowestStep+"_time", b.SlowestTime)
		}

	case "response_processing_time":
		if ms, ok := toFloat(value); ok {
			r.recordSample("response_time", ms)
		}
	}
}

func (r *Recorder) increment(key string) {
	r.counters[key]++
}

func (r *Recorder) incrementSub(key, sub string) {
	if r.subCounters[key] == nil {
		r.subCounters[key] = map[string]int{}
	}
	r.subCounters[key][sub]++
}

func (r *Recorder) recordSample(key string, value float64) {
	s := append(r.series[key], value)
	if len(s) > maxSamples {
		s = s[len(s)-maxSamples:]
	}
	r.series[key] = s
}

// History returns a copy of the full edit history.
func (r *Recorder) History() []EditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EditEvent(nil), r.editHistory...)
}

// FieldHistory returns the edit history filtered to one field.
func (r *Recorder) FieldHistory(field string) []EditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EditEvent
	for _, e := range r.editHistory {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case time.Duration:
		return float64(n) / float64(time.Millisecond), true
	}
	return 0, false
}
