package sim

import (
	"sort"
	"sync"

	"github.com/kbukum/ticksim/errors"
	"github.com/kbukum/ticksim/message"
)

// LatencyStats summarises result latencies in ticks.
type LatencyStats struct {
	Count int          `json:"count"`
	Total message.Tick `json:"total"`
	Min   message.Tick `json:"min"`
	Max   message.Tick `json:"max"`
}

// Mean returns the average latency, or 0 with no samples.
func (s LatencyStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Total) / float64(s.Count)
}

func (s *LatencyStats) add(v message.Tick) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Total += v
}

// Report is a snapshot of a simulation run.
type Report struct {
	Ticks     message.Tick            `json:"ticks"`
	Results   int                     `json:"results"`
	ByCode    map[string]int          `json:"by_code"`
	ByReason  map[string]int          `json:"by_reason"`
	Latency   map[string]LatencyStats `json:"latency"`
	Makespan  LatencyStats            `json:"makespan"`
	Arrived   int                     `json:"arrived"`
	Completed int                     `json:"completed"`
	Failed    int                     `json:"failed"`
	// Failures counts failed instances by the error code that ended them.
	Failures map[string]int `json:"failures"`
	InFlight int            `json:"in_flight"`
	// SLOMet counts completed instances that finished within their SLO;
	// instances without one always count.
	SLOMet int `json:"slo_met"`
}

// SLOAttainment returns the share of finished instances that met their SLO.
func (r Report) SLOAttainment() float64 {
	finished := r.Completed + r.Failed
	if finished == 0 {
		return 0
	}
	return float64(r.SLOMet) / float64(finished)
}

// Functions returns the function names with latency samples, sorted.
func (r Report) Functions() []string {
	names := make([]string, 0, len(r.Latency))
	for name := range r.Latency {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collector aggregates results and workflow outcomes.
type Collector struct {
	mu        sync.Mutex
	results   int
	byCode    map[message.Code]int
	byReason  map[message.Reason]int
	latency   map[string]*LatencyStats
	makespan  LatencyStats
	arrived   int
	completed int
	failed    int
	failures  map[errors.ErrorCode]int
	sloMet    int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		byCode:   make(map[message.Code]int),
		byReason: make(map[message.Reason]int),
		latency:  make(map[string]*LatencyStats),
		failures: make(map[errors.ErrorCode]int),
	}
}

// Record counts r. Successful results contribute their latency to the
// function's statistics.
func (c *Collector) Record(r message.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results++
	c.byCode[r.Code]++
	c.byReason[r.Reason]++
	if !r.OK() {
		return
	}
	stats, ok := c.latency[r.Action.Function]
	if !ok {
		stats = &LatencyStats{}
		c.latency[r.Action.Function] = stats
	}
	stats.add(r.Latency())
}

// Arrived counts a released workflow instance.
func (c *Collector) Arrived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arrived++
}

// Completed counts an instance whose last function succeeded after makespan
// ticks. withinSLO reports whether it met its SLO.
func (c *Collector) Completed(makespan message.Tick, withinSLO bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed++
	c.makespan.add(makespan)
	if withinSLO {
		c.sloMet++
	}
}

// Failed counts an instance abandoned after a terminal error with code.
func (c *Collector) Failed(code errors.ErrorCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
	c.failures[code]++
}

// Report returns a snapshot taken at tick now.
func (c *Collector) Report(now message.Tick) Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := Report{
		Ticks:     now,
		Results:   c.results,
		ByCode:    make(map[string]int, len(c.byCode)),
		ByReason:  make(map[string]int, len(c.byReason)),
		Latency:   make(map[string]LatencyStats, len(c.latency)),
		Makespan:  c.makespan,
		Arrived:   c.arrived,
		Completed: c.completed,
		Failed:    c.failed,
		Failures:  make(map[string]int, len(c.failures)),
		InFlight:  c.arrived - c.completed - c.failed,
		SLOMet:    c.sloMet,
	}
	for code, n := range c.byCode {
		r.ByCode[code.String()] = n
	}
	for reason, n := range c.byReason {
		r.ByReason[string(reason)] = n
	}
	for code, n := range c.failures {
		r.Failures[string(code)] = n
	}
	for fn, stats := range c.latency {
		r.Latency[fn] = *stats
	}
	return r
}
