// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session defines the events a conversion run emits and renders them
// to the terminal. A pterm area with a spinner is used on interactive
// terminals; otherwise each event becomes one plain line.
package session

// EventType enumerates conversion run event kinds.
type EventType string

const (
	// EventAnalysisStarted is emitted before reference extraction; Total is the file count.
	EventAnalysisStarted EventType = "analysis_started"
	// EventFileAnalyzed reports one analyzed file with Done/Total.
	EventFileAnalyzed EventType = "file_analyzed"
	// EventAnalysisDone is emitted once the dependency graph is stored.
	EventAnalysisDone EventType = "analysis_done"
	// EventCycle reports a dependency back edge File -> Dep that was not followed.
	EventCycle EventType = "cycle_detected"
	// EventPlanReady carries Total files and Done already processed.
	EventPlanReady EventType = "plan_ready"
	// EventFileStarted is emitted before generation for File.
	EventFileStarted EventType = "file_started"
	// EventFileSkipped reports a file not converted in this run and why.
	EventFileSkipped EventType = "file_skipped"
	// EventFileDone reports generated code for File; Output is empty for stdout.
	EventFileDone EventType = "file_done"
	// EventFileFailed reports a conversion failure with Reason.
	EventFileFailed EventType = "file_failed"
)

// Skip reasons.
const (
	ReasonProcessed  = "already processed"
	ReasonDependency = "a dependency failed"
)

// Event is a generic container for run events. Only a subset of fields is
// set depending on Type.
type Event struct {
	Type EventType `json:"type"`

	File   string `json:"file,omitempty"`
	Dep    string `json:"dep,omitempty"`
	Output string `json:"output,omitempty"`
	Reason string `json:"reason,omitempty"`

	Done    int `json:"done,omitempty"`
	Total   int `json:"total,omitempty"`
	Symbols int `json:"symbols,omitempty"`
	// Cached is set when the answer came from the response cache.
	Cached bool `json:"cached,omitempty"`
}

// Sink receives events. A nil Sink drops them.
type Sink func(Event)

// Emit sends ev to s if s is set.
func (s Sink) Emit(ev Event) {
	if s != nil {
		s(ev)
	}
}
