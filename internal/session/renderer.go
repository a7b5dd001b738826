// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// Frames are the spinner frames used by the area display.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// recentLines bounds how many finished files the area keeps on screen.
const recentLines = 8

// Renderer renders run events. Interactive renderers draw a live pterm area;
// others print one line per event to out.
type Renderer struct {
	out         io.Writer
	interactive bool
	state       *ProgressState
	render      *RenderState

	mu   sync.Mutex
	area *pterm.AreaPrinter
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, interactive bool) *Renderer {
	return &Renderer{
		out:         out,
		interactive: interactive,
		state:       NewProgressState(),
		render:      NewRenderState(),
	}
}

// State returns the accumulated run state.
func (r *Renderer) State() *ProgressState { return r.state }

// Handle processes a single event. It is safe to call from several goroutines.
func (r *Renderer) Handle(ev Event) {
	r.state.Apply(ev)
	if r.interactive {
		r.handleInteractive(ev)
		return
	}
	r.printLine(ev)
}

func (r *Renderer) printLine(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case EventAnalysisStarted:
		pterm.Fprintln(r.out, pterm.NewStyle(pterm.FgLightCyan).Sprintf("Analyzing %d files", ev.Total))
	case EventCycle:
		pterm.Warning.WithWriter(r.out).Printfln("Dependency cycle: %s -> %s (edge ignored)", ev.File, ev.Dep)
	case EventPlanReady:
		pterm.Fprintln(r.out, pterm.NewStyle(pterm.FgLightCyan).Sprintf("Converting %d files (%d already done)", ev.Total, ev.Done))
	case EventFileSkipped:
		if ev.Reason != ReasonProcessed {
			pterm.Warning.WithWriter(r.out).Printfln("%s skipped: %s", ev.File, ev.Reason)
		}
	case EventFileDone:
		msg := ev.File
		if ev.Output != "" {
			msg += " -> " + ev.Output
		}
		if ev.Symbols > 0 {
			msg += fmt.Sprintf(" (%d symbols)", ev.Symbols)
		}
		pterm.Success.WithWriter(r.out).Println(msg)
	case EventFileFailed:
		pterm.Error.WithWriter(r.out).Printfln("%s: %s", ev.File, ev.Reason)
	}
}

func (r *Renderer) handleInteractive(ev Event) {
	switch ev.Type {
	case EventAnalysisStarted, EventPlanReady:
		r.startArea()
	case EventAnalysisDone:
		r.stopArea()
	case EventCycle:
		r.mu.Lock()
		active := r.area != nil
		r.mu.Unlock()
		if !active {
			pterm.Warning.WithWriter(r.out).Printfln("Dependency cycle: %s -> %s (edge ignored)", ev.File, ev.Dep)
		}
	}
	r.update()
}

func (r *Renderer) startArea() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area != nil {
		return
	}
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return
	}
	r.area = area
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go func(stop chan struct{}) {
		defer r.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.render.IncrementFrame()
				r.update()
			}
		}
	}(r.stop)
}

func (r *Renderer) stopArea() {
	r.mu.Lock()
	if r.area == nil {
		r.mu.Unlock()
		return
	}
	close(r.stop)
	r.mu.Unlock()
	r.wg.Wait()

	r.mu.Lock()
	_ = r.area.Stop()
	r.area = nil
	r.mu.Unlock()
	cursor.Show()
}

func (r *Renderer) update() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area == nil {
		return
	}
	r.area.Update(r.frame())
}

// frame builds the area content. Callers hold r.mu.
func (r *Renderer) frame() string {
	active, done, analyzed, analysisTotal, total := r.state.snapshot()
	spin := Frames[r.render.Frame()%len(Frames)]

	var b strings.Builder
	if total == 0 {
		b.WriteString(r.render.FormatLine(fmt.Sprintf("%s Analyzing dependencies %d/%d", spin, analyzed, analysisTotal)))
		return b.String()
	}
	header := fmt.Sprintf("%s Converting %d/%d", spin, len(done), total)
	if active != "" {
		header += "  " + active
	}
	b.WriteString(r.render.FormatLine(header))
	if len(done) > recentLines {
		done = done[len(done)-recentLines:]
	}
	for _, f := range done {
		b.WriteString("\n")
		b.WriteString(r.render.FormatLine(pterm.FgGreen.Sprint("  ✓ ") + f))
	}
	return b.String()
}

// Close stops any live display.
func (r *Renderer) Close() {
	r.stopArea()
}

// PrintSummary prints the final counters and failures.
func (r *Renderer) PrintSummary() {
	r.Close()
	s := r.state.Summary()

	r.mu.Lock()
	defer r.mu.Unlock()
	line := fmt.Sprintf("%d converted, %d skipped, %d failed", s.Converted, s.Skipped, s.Failed)
	if s.Failed > 0 {
		pterm.Error.WithWriter(r.out).Println(line)
		for _, f := range s.FailedFiles {
			pterm.Fprintln(r.out, "  "+f+": "+r.state.FailureReason(f))
		}
		return
	}
	pterm.Success.WithWriter(r.out).Println(line)
}
