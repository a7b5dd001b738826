// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"bytes"
	"sync"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressState_Apply(t *testing.T) {
	ps := NewProgressState()
	for _, ev := range []Event{
		{Type: EventAnalysisStarted, Total: 3},
		{Type: EventFileAnalyzed, File: "a.sql", Done: 1, Total: 3},
		{Type: EventCycle, File: "b.sql", Dep: "a.sql"},
		{Type: EventPlanReady, Total: 3},
		{Type: EventFileSkipped, File: "a.sql", Reason: ReasonProcessed},
		{Type: EventFileStarted, File: "b.sql"},
		{Type: EventFileFailed, File: "b.sql", Reason: "provider_failed: boom"},
		{Type: EventFileSkipped, File: "c.sql", Reason: ReasonDependency},
	} {
		ps.Apply(ev)
	}

	s := ps.Summary()
	assert.Equal(t, Summary{Total: 3, Converted: 0, Skipped: 2, Failed: 1, FailedFiles: []string{"b.sql"}}, s)
	assert.True(t, ps.HasFailures())
	assert.Equal(t, "provider_failed: boom", ps.FailureReason("b.sql"))
	assert.Equal(t, []string{"b.sql -> a.sql"}, ps.Cycles)
	assert.Empty(t, ps.Active)
}

func TestProgressState_Concurrent(t *testing.T) {
	ps := NewProgressState()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.Apply(Event{Type: EventFileDone, File: "x.sql"})
			_ = ps.Summary()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, ps.Summary().Converted)
}

func TestRenderState_FormatLine(t *testing.T) {
	rs := NewRenderState()
	assert.Equal(t, "long line", rs.FormatLine("long line"))
	assert.Equal(t, "ab       ", rs.FormatLine("ab"))
}

func TestRenderer_Plain(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.Handle(Event{Type: EventAnalysisStarted, Total: 2})
	r.Handle(Event{Type: EventPlanReady, Total: 2})
	r.Handle(Event{Type: EventFileSkipped, File: "a.sql", Reason: ReasonProcessed})
	r.Handle(Event{Type: EventFileStarted, File: "b.sql"})
	r.Handle(Event{Type: EventFileDone, File: "b.sql", Output: "out/b.java", Symbols: 2})
	r.PrintSummary()

	out := buf.String()
	assert.Contains(t, out, "Analyzing 2 files")
	assert.Contains(t, out, "b.sql -> out/b.java (2 symbols)")
	assert.NotContains(t, out, "a.sql", "already processed files are quiet")
	assert.Contains(t, out, "1 converted, 1 skipped, 0 failed")
}

func TestRenderer_PlainFailures(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.Handle(Event{Type: EventFileFailed, File: "a.sql", Reason: "boom"})
	r.Handle(Event{Type: EventFileSkipped, File: "b.sql", Reason: ReasonDependency})
	r.PrintSummary()

	out := buf.String()
	require.Contains(t, out, "a.sql: boom")
	assert.Contains(t, out, "b.sql skipped: a dependency failed")
	assert.Contains(t, out, "0 converted, 1 skipped, 1 failed")
}

func TestSink_Nil(t *testing.T) {
	var s Sink
	s.Emit(Event{Type: EventFileDone})

	var got []Event
	s = func(ev Event) { got = append(got, ev) }
	s.Emit(Event{Type: EventFileDone, File: "a.sql"})
	assert.Len(t, got, 1)
}
