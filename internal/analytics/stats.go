package analytics

import (
	"math"
	"sort"
	"time"
)

// MetricStats is the derived view of one bounded numeric series.
type MetricStats struct {
	Avg            float64 `json:"avg"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Median         float64 `json:"median"`
	P95            float64 `json:"p95"`
	StdDev         float64 `json:"std_dev"`
	Count          int     `json:"count"`
	Trend          string  `json:"trend"`
	Classification string  `json:"classification"`
	Consistency    string  `json:"consistency"`
}

// MostEditedField names the field with the highest edit count.
type MostEditedField struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// ParsingEfficiency summarizes structured-vs-fallback parser usage.
type ParsingEfficiency struct {
	JSONSuccessRate   int     `json:"json_success_rate"`
	FallbackUsageRate int     `json:"fallback_usage_rate"`
	AvgJSONTime       float64 `json:"avg_json_time"`
	AvgFallbackTime   float64 `json:"avg_fallback_time"`
	Recommendation    string  `json:"recommendation"`
}

// Analysis holds the composite analyses derived on every Stats call.
type Analysis struct {
	AvgResponseTime      float64           `json:"avg_response_time"`
	SuccessRate          int               `json:"success_rate"`
	MostUsedResponseType string            `json:"most_used_response_type"`
	ExtractionEfficiency int               `json:"extraction_efficiency"`
	ParsingEfficiency    ParsingEfficiency `json:"parsing_efficiency"`
	PerformanceSummary   string            `json:"performance_summary"`
	Warnings             []string          `json:"warnings"`
}

// Stats is a full point-in-time snapshot of the recorder. It is computed
// fresh on every call, never cached.
type Stats struct {
	Edits              map[string]int            `json:"edits"`
	TotalEdits         int                       `json:"total_edits"`
	MostEditedField    *MostEditedField          `json:"most_edited_field"`
	SessionID          string                    `json:"session_id"`
	StartTime          *time.Time                `json:"start_time"`
	LastEdit           *time.Time                `json:"last_edit"`
	PipelineMetrics    map[string]int            `json:"pipeline_metrics"`
	PipelineBreakdown  map[string]map[string]int `json:"pipeline_breakdown"`
	PerformanceMetrics map[string]MetricStats    `json:"performance_metrics"`
	Analysis           Analysis                  `json:"analysis"`
}

type thresholdSet struct {
	excellent float64
	good      float64
	regular   float64
}

// classificationThresholds holds per-metric p95 thresholds; metrics without
// an entry fall back to the generic set.
var classificationThresholds = map[string]thresholdSet{
	"json_parsing_time":     {excellent: 5, good: 15, regular: 50},
	"fallback_parsing_time": {excellent: 20, good: 50, regular: 150},
	"total_parsing_time":    {excellent: 30, good: 80, regular: 200},
	"response_time":         {excellent: 100, good: 300, regular: 800},
}

var genericThresholds = thresholdSet{excellent: 50, good: 150, regular: 400}

// Stats computes and returns a full snapshot.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	edits := make(map[string]int, len(r.editCounts))
	totalEdits := 0
	var most *MostEditedField
	for field, count := range r.editCounts {
		edits[field] = count
		totalEdits += count
		if most == nil || count > most.Count {
			most = &MostEditedField{Field: field, Count: count}
		}
	}

	var startTime, lastEdit *time.Time
	if len(r.editHistory) > 0 {
		first := r.editHistory[0].Timestamp
		last := r.editHistory[len(r.editHistory)-1].Timestamp
		startTime, lastEdit = &first, &last
	}

	pipeline := make(map[string]int, len(r.counters))
	for k, v := range r.counters {
		pipeline[k] = v
	}
	breakdown := make(map[string]map[string]int, len(r.subCounters))
	for k, sub := range r.subCounters {
		inner := make(map[string]int, len(sub))
		for sk, sv := range sub {
			inner[sk] = sv
		}
		breakdown[k] = inner
	}

	perf := make(map[string]MetricStats, len(r.series))
	for key, values := range r.series {
		if len(values) == 0 {
			continue
		}
		perf[key] = computeMetricStats(key, values)
	}

	parsing := r.analyzeParsingEfficiency()

	analysis := Analysis{
		AvgResponseTime:      perf["response_time"].Avg,
		SuccessRate:          r.successRate(),
		MostUsedResponseType: r.mostUsedResponseType(),
		ExtractionEfficiency: r.extractionEfficiency(),
		ParsingEfficiency:    parsing,
		PerformanceSummary:   performanceSummary(perf),
		Warnings:             performanceWarnings(perf),
	}

	return Stats{
		Edits:              edits,
		TotalEdits:         totalEdits,
		MostEditedField:    most,
		SessionID:          r.sessionID,
		StartTime:          startTime,
		LastEdit:           lastEdit,
		PipelineMetrics:    pipeline,
		PipelineBreakdown:  breakdown,
		PerformanceMetrics: perf,
		Analysis:           analysis,
	}
}

func computeMetricStats(key string, values []float64) MetricStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	min, max := sorted[0], sorted[len(sorted)-1]

	var median float64
	n := len(sorted)
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}

	p95Index := int(math.Floor(float64(n) * 0.95))
	if p95Index >= n {
		p95Index = n - 1
	}
	p95 := sorted[p95Index]

	var variance float64
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(values))
	stdDev := math.Sqrt(variance)

	recent := values
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	consistency := "low"
	switch {
	case stdDev < avg*0.2:
		consistency = "high"
	case stdDev < avg*0.5:
		consistency = "medium"
	}

	return MetricStats{
		Avg:            round2(avg),
		Min:            min,
		Max:            max,
		Median:         round2(median),
		P95:            round2(p95),
		StdDev:         round2(stdDev),
		Count:          len(values),
		Trend:          calculateTrend(recent),
		Classification: classifyPerformance(key, p95),
		Consistency:    consistency,
	}
}

// calculateTrend compares the first and second half of the most recent
// samples with a 5% deadband; lower is better for every timing metric.
func calculateTrend(values []float64) string {
	if len(values) < 3 {
		return "stable"
	}

	half := len(values) / 2
	var firstSum, secondSum float64
	for _, v := range values[:half] {
		firstSum += v
	}
	for _, v := range values[half:] {
		secondSum += v
	}
	firstAvg := firstSum / float64(half)
	secondAvg := secondSum / float64(len(values)-half)
	if firstAvg == 0 {
		return "stable"
	}

	changePercent := (secondAvg - firstAvg) / firstAvg * 100
	if math.Abs(changePercent) < 5 {
		return "stable"
	}
	if changePercent < 0 {
		return "improving"
	}
	return "degrading"
}

func classifyPerformance(key string, p95 float64) string {
	t, ok := classificationThresholds[key]
	if !ok {
		t = genericThresholds
	}
	switch {
	case p95 <= t.excellent:
		return "excellent"
	case p95 <= t.good:
		return "good"
	case p95 <= t.regular:
		return "regular"
	default:
		return "poor"
	}
}

// successRate reports text-extraction success as a whole percentage; with
// no observations it optimistically reports 100.
func (r *Recorder) successRate() int {
	success := r.counters["text_extraction_success"]
	total := success + r.counters["text_extraction_failure"]
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(success) / float64(total) * 100))
}

func (r *Recorder) mostUsedResponseType() string {
	types := r.subCounters["pipeline_responses_by_type"]
	best, bestCount := "", 0
	for k, v := range types {
		if v > bestCount || (v == bestCount && k < best) {
			best, bestCount = k, v
		}
	}
	return best
}

// extractionEfficiency is the share of budgets produced by structured
// parsing rather than text extraction.
func (r *Recorder) extractionEfficiency() int {
	methods := r.subCounters["budgets_by_method"]
	structured := methods["structured"]
	extracted := methods["text_extraction"]
	total := structured + extracted
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(structured) / float64(total) * 100))
}

func (r *Recorder) analyzeParsingEfficiency() ParsingEfficiency {
	jsonTimes := r.series["json_parsing_time"]
	fallbackTimes := r.series["fallback_parsing_time"]
	totalCalls := len(jsonTimes) + len(fallbackTimes)

	if totalCalls == 0 {
		return ParsingEfficiency{
			JSONSuccessRate: 100,
			Recommendation:  "Nenhum dado disponível",
		}
	}

	out := ParsingEfficiency{
		JSONSuccessRate:   int(math.Round(float64(len(jsonTimes)) / float64(totalCalls) * 100)),
		FallbackUsageRate: int(math.Round(float64(len(fallbackTimes)) / float64(totalCalls) * 100)),
		AvgJSONTime:       round2(mean(jsonTimes)),
		AvgFallbackTime:   round2(mean(fallbackTimes)),
	}

	switch {
	case out.FallbackUsageRate > 30:
		out.Recommendation = "Alto uso de fallback. Considere melhorar prompts para JSON estruturado."
	case out.AvgFallbackTime > 100:
		out.Recommendation = "Fallback parsing lento. Considere otimizar regexes."
	case out.JSONSuccessRate > 80 && out.AvgJSONTime < 10:
		out.Recommendation = "Parsing eficiente. Sistema funcionando bem."
	default:
		out.Recommendation = "Performance moderada. Monitore tendências."
	}
	return out
}

func performanceSummary(perf map[string]MetricStats) string {
	critical := []string{"total_parsing_time", "response_time"}
	var poor []string
	for _, key := range critical {
		if s, ok := perf[key]; ok && s.Classification == "poor" {
			poor = append(poor, key)
		}
	}
	if len(poor) > 0 {
		return "Performance crítica em: " + joinSorted(poor)
	}

	excellent := 0
	for _, s := range perf {
		if s.Classification == "excellent" {
			excellent++
		}
	}
	if excellent >= 2 {
		return "Performance excelente em geral"
	}
	return "Performance adequada - monitore tendências"
}

func performanceWarnings(perf map[string]MetricStats) []string {
	var warnings []string

	if s, ok := perf["total_parsing_time"]; ok && s.P95 > 200 {
		warnings = append(warnings, "Parsing P95 acima de 200ms - considere otimizações")
	}

	var inconsistent, degrading []string
	for key, s := range perf {
		if s.Consistency == "low" {
			inconsistent = append(inconsistent, key)
		}
		if s.Trend == "degrading" {
			degrading = append(degrading, key)
		}
	}
	if len(inconsistent) > 0 {
		warnings = append(warnings, "Métricas inconsistentes: "+joinSorted(inconsistent))
	}
	if len(degrading) > 0 {
		warnings = append(warnings, "Tendência de piora: "+joinSorted(degrading))
	}
	return warnings
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func joinSorted(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	out := ""
	for i, s := range sorted {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
