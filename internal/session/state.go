// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// ProgressState tracks files of the current run. It is safe for concurrent use.
type ProgressState struct {
	// Total is the number of files in the plan.
	Total int
	// Analyzed and AnalysisTotal track reference extraction.
	Analyzed      int
	AnalysisTotal int
	// Active is the file being converted, if any.
	Active string
	// Done lists converted files in completion order.
	Done []string
	// Skipped maps files to skip reasons.
	Skipped map[string]string
	// Failed maps files to failure reasons.
	Failed map[string]string
	// Cycles are back edges rendered as "a -> b".
	Cycles []string

	mu sync.Mutex
}

// NewProgressState creates a new ProgressState with initialized maps.
func NewProgressState() *ProgressState {
	return &ProgressState{
		Skipped: make(map[string]string),
		Failed:  make(map[string]string),
	}
}

// Apply folds one event into the state.
func (ps *ProgressState) Apply(ev Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	switch ev.Type {
	case EventAnalysisStarted:
		ps.AnalysisTotal = ev.Total
		ps.Analyzed = 0
	case EventFileAnalyzed:
		ps.Analyzed = ev.Done
		if ev.Total > 0 {
			ps.AnalysisTotal = ev.Total
		}
	case EventCycle:
		ps.Cycles = append(ps.Cycles, ev.File+" -> "+ev.Dep)
	case EventPlanReady:
		ps.Total = ev.Total
	case EventFileStarted:
		ps.Active = ev.File
	case EventFileSkipped:
		ps.Skipped[ev.File] = ev.Reason
	case EventFileDone:
		if ps.Active == ev.File {
			ps.Active = ""
		}
		ps.Done = append(ps.Done, ev.File)
	case EventFileFailed:
		if ps.Active == ev.File {
			ps.Active = ""
		}
		ps.Failed[ev.File] = ev.Reason
	}
}

// Summary is a snapshot of the counters.
type Summary struct {
	Total     int
	Converted int
	Skipped   int
	Failed    int
	// FailedFiles is sorted.
	FailedFiles []string
}

// Summary returns the current counters.
func (ps *ProgressState) Summary() Summary {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	failed := make([]string, 0, len(ps.Failed))
	for f := range ps.Failed {
		failed = append(failed, f)
	}
	sort.Strings(failed)
	return Summary{
		Total:       ps.Total,
		Converted:   len(ps.Done),
		Skipped:     len(ps.Skipped),
		Failed:      len(ps.Failed),
		FailedFiles: failed,
	}
}

// FailureReason returns why file failed, or "".
func (ps *ProgressState) FailureReason(file string) string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.Failed[file]
}

// HasFailures returns true if any file has failed.
func (ps *ProgressState) HasFailures() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.Failed) > 0
}

func (ps *ProgressState) snapshot() (active string, done []string, analyzed, analysisTotal, total int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.Active, append([]string(nil), ps.Done...), ps.Analyzed, ps.AnalysisTotal, ps.Total
}

// RenderState keeps area lines padded to a stable width to prevent flicker.
type RenderState struct {
	FrameIdx   int
	MaxLineLen int
	mu         sync.Mutex
}

// NewRenderState creates a new RenderState with default values.
func NewRenderState() *RenderState { return &RenderState{} }

// IncrementFrame advances the animation frame index and returns the new value.
func (rs *RenderState) IncrementFrame() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.FrameIdx++
	return rs.FrameIdx
}

// Frame returns the current animation frame index.
func (rs *RenderState) Frame() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.FrameIdx
}

// FormatLine pads line to the longest line seen so far.
func (rs *RenderState) FormatLine(line string) string {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	lineLen := utf8.RuneCountInString(line)
	if lineLen > rs.MaxLineLen {
		rs.MaxLineLen = lineLen
	}
	if pad := rs.MaxLineLen - lineLen; pad > 0 {
		return line + strings.Repeat(" ", pad)
	}
	return line
}
