package telemetry

import (
	"sort"
	"time"
)

// PerfStats tracks execution time for each pipeline stage.
type PerfStats struct {
	samples    map[string][]time.Duration
	maxSamples int
}

// NewPerfStats creates a performance stats tracker retaining up to
// maxSamples recent samples per stage.
func NewPerfStats(maxSamples int) *PerfStats {
	if maxSamples <= 0 {
		maxSamples = 120
	}
	return &PerfStats{
		samples:    make(map[string][]time.Duration),
		maxSamples: maxSamples,
	}
}

// Record adds a duration sample for the named stage.
func (p *PerfStats) Record(name string, d time.Duration) {
	p.samples[name] = append(p.samples[name], d)
	if len(p.samples[name]) > p.maxSamples {
		p.samples[name] = p.samples[name][1:]
	}
}

// Avg returns the average duration for the named stage.
func (p *PerfStats) Avg(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Total returns the sum of all average durations.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for name := range p.samples {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns stage names sorted by average duration (descending).
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.Avg(names[i]) > p.Avg(names[j])
	})
	return names
}

// PerfRecord is the CSV row shape for stage timings.
type PerfRecord struct {
	WindowEndTick uint64  `csv:"window_end"`
	Stage         string  `csv:"stage"`
	AvgMicros     float64 `csv:"avg_us"`
}

// ToRecords flattens the tracker into CSV rows, slowest stage first.
func (p *PerfStats) ToRecords(windowEnd uint64) []PerfRecord {
	names := p.SortedNames()
	records := make([]PerfRecord, 0, len(names))
	for _, name := range names {
		records = append(records, PerfRecord{
			WindowEndTick: windowEnd,
			Stage:         name,
			AvgMicros:     float64(p.Avg(name).Nanoseconds()) / 1e3,
		})
	}
	return records
}
