package parser

import (
	"math"
	"strings"
	"time"

	"orcavox/internal/analytics"
	"orcavox/internal/domain"
)

// Parse methods reported to analytics.
const (
	MethodStructured       = "json_structured"
	MethodTextExtraction   = "text_extraction"
	MethodExtractionFailed = "extraction_failed"
)

// Outcome is the result of routing one raw response text. Exactly one of
// three shapes holds: a recognized structured envelope, a heuristically
// extracted document, or neither (free text with no budget content).
type Outcome struct {
	Envelope  *Envelope
	Extracted *domain.BudgetDocument
	Method    string
}

// Router classifies raw response text and runs the appropriate parse
// path. Structured interpretation is always attempted first; heuristic
// extraction only runs when it yields nothing usable. Every stage is
// timed and reported to analytics as a required side effect.
type Router struct {
	rec       *analytics.Recorder
	extractor *Extractor
}

// NewRouter creates a Router reporting to rec.
func NewRouter(rec *analytics.Recorder) *Router {
	return &Router{rec: rec, extractor: NewExtractor(rec)}
}

// Parse routes one raw response text. It never returns an error: all
// parse failures degrade to the heuristic path or to an empty outcome.
func (r *Router) Parse(text string) *Outcome {
	start := time.Now()

	var (
		env        *Envelope
		extracted  *domain.BudgetDocument
		jsonMS     float64
		fallbackMS float64
	)
	method := MethodExtractionFailed
	fallbackText := text

	clean := stripFences(text)
	if strings.HasPrefix(clean, "{") && strings.HasSuffix(clean, "}") {
		jsonStart := time.Now()
		decoded, err := DecodeEnvelope([]byte(clean))
		jsonMS = millisSince(jsonStart)

		if err != nil {
			r.rec.RecordFieldEdit("json_parsing_failure", nil, analytics.ParseFailure{
				Error:       err.Error(),
				Duration:    jsonMS,
				TextLength:  len(text),
				TextPreview: preview(text, 100),
			})
		} else {
			r.rec.RecordFieldEdit("parser_performance_json_ms", nil, jsonMS)
			env = decoded
			if decoded.Type == TypeUnrecognized {
				// unknown tag: the serialized payload goes down the
				// free-text path instead of the original input
				fallbackText = string(decoded.Raw)
			} else {
				method = MethodStructured
			}
		}
	}

	if env == nil || env.Type == TypeUnrecognized {
		fallbackStart := time.Now()
		extracted = r.extractor.Extract(fallbackText)
		fallbackMS = millisSince(fallbackStart)

		if extracted != nil {
			method = MethodTextExtraction
		} else {
			method = MethodExtractionFailed
		}
		r.rec.RecordFieldEdit("parser_performance_fallback_ms", nil, analytics.FallbackSample{
			Duration:   fallbackMS,
			TextLength: len(fallbackText),
			Success:    extracted != nil,
			Method:     method,
		})
	}

	totalMS := millisSince(start)
	success := method != MethodExtractionFailed

	efficiency := 0.0
	if len(text) > 0 {
		efficiency = totalMS / float64(len(text))
	}
	r.rec.RecordFieldEdit("parser_performance_total", nil, analytics.TotalSample{
		JSONParsing:     jsonMS,
		FallbackParsing: fallbackMS,
		TotalTime:       totalMS,
		Efficiency:      efficiency,
		TextLength:      len(text),
		Method:          method,
		Success:         success,
	})

	// 0.1ms per input character is the expected parse budget
	expectedMS := float64(len(text)) * 0.1
	if totalMS > math.Max(100, expectedMS*2) {
		factor := 0.0
		if expectedMS > 0 {
			factor = totalMS / expectedMS
		}
		r.rec.RecordFieldEdit("parser_slow_warning", nil, analytics.SlowWarning{
			ActualTime:     totalMS,
			ExpectedTime:   expectedMS,
			SlownessFactor: factor,
			TextLength:     len(text),
			Method:         method,
		})
	} else if expectedMS > 0 && totalMS < expectedMS*0.5 {
		r.rec.RecordFieldEdit("parser_fast_performance", nil, totalMS)
	}

	return &Outcome{Envelope: env, Extracted: extracted, Method: method}
}

// stripFences removes a leading ```json opener and a trailing ``` fence.
func stripFences(text string) string {
	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimSpace(strings.TrimPrefix(clean, "```json"))
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimSpace(strings.TrimPrefix(clean, "```"))
	}
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
