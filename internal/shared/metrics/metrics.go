package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	critiqueGeneratedTotal  atomic.Uint64
	critiqueReusedTotal     atomic.Uint64
	critiqueFailedTotal     atomic.Uint64
	critiqueParseEmptyTotal atomic.Uint64

	critiqueDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 20000, 30000, 60000, 120000})

	llmRequests = newLabeledCounter()
)

func IncCritiqueGenerated() {
	critiqueGeneratedTotal.Add(1)
}

func IncCritiqueReused() {
	critiqueReusedTotal.Add(1)
}

func IncCritiqueFailed() {
	critiqueFailedTotal.Add(1)
}

// IncCritiqueParseEmpty counts critiques from which no structure could be extracted.
func IncCritiqueParseEmpty() {
	critiqueParseEmptyTotal.Add(1)
}

// ObserveCritiqueDurationMs records an LLM critique generation duration in milliseconds.
func ObserveCritiqueDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	critiqueDuration.Observe(value)
}

// IncLLMRequest counts one provider call by outcome ("ok" or "error").
func IncLLMRequest(provider, status string) {
	llmRequests.Inc(provider, status)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "critique_generated_total", "Total critiques generated by an LLM", critiqueGeneratedTotal.Load())
	writeCounter(&buf, "critique_reused_total", "Total critiques served from the stored copy", critiqueReusedTotal.Load())
	writeCounter(&buf, "critique_failed_total", "Total critique generations that failed", critiqueFailedTotal.Load())
	writeCounter(&buf, "critique_parse_empty_total", "Total critiques with no extractable structure", critiqueParseEmptyTotal.Load())
	writeHistogram(&buf, "critique_generation_duration_ms", "Critique generation duration in milliseconds", critiqueDuration.Snapshot())
	llmRequests.write(&buf, "llm_requests_total", "Total LLM provider calls")
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in its smallest bucket; writeHistogram accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[[2]string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[[2]string]uint64)}
}

func (l *labeledCounter) Inc(provider, status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[[2]string{provider, status}]++
}

func (l *labeledCounter) write(buf *bytes.Buffer, name, help string) {
	l.mu.Lock()
	keys := make([][2]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	snapshot := make(map[[2]string]uint64, len(l.values))
	for k, v := range l.values {
		snapshot[k] = v
	}
	l.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{provider=%q,status=%q} %d\n", name, k[0], k[1], snapshot[k])
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
