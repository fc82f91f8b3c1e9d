package journal

import (
	"sort"
	"time"
)

// CommandStats aggregates entries for one command code.
type CommandStats struct {
	Command  string `json:"command" yaml:"command"`
	Count    int    `json:"count" yaml:"count"`
	Failures int    `json:"failures" yaml:"failures"`
	MeanMs   int64  `json:"mean_ms" yaml:"mean_ms"`
	MaxMs    int64  `json:"max_ms" yaml:"max_ms"`

	totalMs int64
}

// Summary aggregates a journal.
type Summary struct {
	Total     int            `json:"total" yaml:"total"`
	Failures  int            `json:"failures" yaml:"failures"`
	ByOutcome map[string]int `json:"by_outcome" yaml:"by_outcome"`
	Commands  []CommandStats `json:"commands" yaml:"commands"`
	First     time.Time      `json:"first,omitzero" yaml:"first,omitempty"`
	Last      time.Time      `json:"last,omitzero" yaml:"last,omitempty"`
}

// Summarize aggregates entries. Commands are sorted by count, then name.
func Summarize(entries []Entry) Summary {
	s := Summary{ByOutcome: make(map[string]int)}
	byCmd := make(map[string]*CommandStats)

	for i := range entries {
		e := &entries[i]
		s.Total++
		s.ByOutcome[e.Outcome]++
		if s.First.IsZero() || e.Time.Before(s.First) {
			s.First = e.Time
		}
		if e.Time.After(s.Last) {
			s.Last = e.Time
		}

		cs, ok := byCmd[e.Command]
		if !ok {
			cs = &CommandStats{Command: e.Command}
			byCmd[e.Command] = cs
		}
		cs.Count++
		cs.totalMs += e.DurationMs
		cs.MaxMs = max(cs.MaxMs, e.DurationMs)
		if e.Failed() {
			cs.Failures++
			s.Failures++
		}
	}

	for _, cs := range byCmd {
		cs.MeanMs = cs.totalMs / int64(cs.Count)
		s.Commands = append(s.Commands, *cs)
	}
	sort.Slice(s.Commands, func(i, j int) bool {
		if s.Commands[i].Count != s.Commands[j].Count {
			return s.Commands[i].Count > s.Commands[j].Count
		}
		return s.Commands[i].Command < s.Commands[j].Command
	})
	return s
}
