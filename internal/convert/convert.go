// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package convert drives a conversion run: it builds or resumes the dependency
// graph, converts files dependencies first while growing the symbol table,
// writes the generated Java and checkpoints after every file.
package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"procport/cli/internal/analysis"
	perr "procport/cli/internal/errors"
	"procport/cli/internal/graph"
	"procport/cli/internal/llm"
	"procport/cli/internal/logging"
	"procport/cli/internal/progress"
	"procport/cli/internal/prompt"
	"procport/cli/internal/scan"
	"procport/cli/internal/session"

	"github.com/pterm/pterm"
)

// Options configures a Processor.
type Options struct {
	WorkDir string
	// OutputDir receives <file>.java; empty prints code to Stdout.
	OutputDir string
	Stdout    io.Writer

	Client      llm.Client
	Prompts     *prompt.Set
	Model       string
	MaxTokens   int
	Concurrency int

	// KeepGoing records failures and skips their dependents instead of
	// stopping at the first error.
	KeepGoing bool

	Log    *pterm.Logger
	Events session.Sink
}

// Generated is the model's answer for one file.
type Generated struct {
	JavaCode string            `json:"java_code"`
	Symbols  []progress.Symbol `json:"symbols"`
}

// Processor converts the files of one working directory.
type Processor struct {
	opts  Options
	log   *pterm.Logger
	path  string
	state *progress.State

	graph *graph.Graph
	order []string
	// back holds the edges Order ignored; they are never followed.
	back     map[graph.Cycle]bool
	cycles   []graph.Cycle
	reported map[graph.Cycle]bool

	// seen holds files already reported or converted in this run.
	seen map[string]bool
	// blocked maps a file to the failed file it depends on.
	blocked  map[string]string
	failed   map[string]error
	failures []error
}

// New loads the checkpoint of opts.WorkDir. When it holds no dependency graph,
// the graph is built by analysis and the checkpoint saved.
func New(ctx context.Context, opts Options) (*Processor, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.Default()
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	path := progress.Path(opts.WorkDir)
	state, err := progress.Load(path)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		opts:     opts,
		log:      log,
		path:     path,
		state:    state,
		reported: map[graph.Cycle]bool{},
		seen:     map[string]bool{},
		blocked:  map[string]string{},
		failed:   map[string]error{},
	}

	if !state.HasGraph() {
		if err := p.buildGraph(ctx); err != nil {
			return nil, err
		}
	} else {
		log.Debug("resuming from checkpoint", log.Args("path", path, "processed", len(state.Processed())))
	}

	p.graph = graph.FromMap(state.Graph)
	p.order, p.cycles = p.graph.Order()
	p.back = make(map[graph.Cycle]bool, len(p.cycles))
	for _, c := range p.cycles {
		p.back[c] = true
	}
	return p, nil
}

func (p *Processor) buildGraph(ctx context.Context) error {
	files, err := scan.Scan(p.opts.WorkDir)
	if err != nil {
		return err
	}
	p.log.Info("Building dependency graph", p.log.Args("files", len(files)))
	p.opts.Events.Emit(session.Event{Type: session.EventAnalysisStarted, Total: len(files)})

	a := &analysis.Analyzer{
		Client:      p.opts.Client,
		Prompts:     p.opts.Prompts,
		Model:       p.opts.Model,
		MaxTokens:   p.opts.MaxTokens,
		Concurrency: p.opts.Concurrency,
		Log:         p.log,
		OnFile: func(file string, done, total int) {
			p.opts.Events.Emit(session.Event{Type: session.EventFileAnalyzed, File: file, Done: done, Total: total})
		},
	}
	g, err := a.BuildGraph(ctx, p.opts.WorkDir, files)
	if err != nil {
		return err
	}
	p.state.Graph = g
	if err := p.state.Save(p.path); err != nil {
		return err
	}
	p.opts.Events.Emit(session.Event{Type: session.EventAnalysisDone, Total: len(files)})
	return nil
}

// State returns the checkpoint being updated.
func (p *Processor) State() *progress.State { return p.state }

// Plan returns the conversion order and the dependency cycles it breaks.
// Process converts files in exactly this order.
func (p *Processor) Plan() ([]string, []graph.Cycle) {
	return append([]string(nil), p.order...), append([]graph.Cycle(nil), p.cycles...)
}

// Process converts every file in plan order.
func (p *Processor) Process(ctx context.Context) error {
	done := 0
	for _, f := range p.order {
		if p.state.IsProcessed(f) {
			done++
		}
	}
	p.opts.Events.Emit(session.Event{Type: session.EventPlanReady, Total: len(p.order), Done: done})
	for _, c := range p.cycles {
		p.reportCycle(c)
	}

	for _, file := range p.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processOne(ctx, file); err != nil && !p.opts.KeepGoing {
			return err
		}
	}
	if len(p.failures) > 0 {
		return perr.Wrap(perr.GenerationFailed,
			fmt.Sprintf("%d of %d files failed", len(p.failures), len(p.order)),
			errors.Join(p.failures...))
	}
	return nil
}

// ProcessFile converts file after its dependencies. Processed files are
// skipped. Edges that Plan reports as cycles are not followed.
func (p *Processor) ProcessFile(ctx context.Context, file string) error {
	if p.state.IsProcessed(file) {
		return p.processOne(ctx, file)
	}
	deps, err := p.graph.Dependencies(file)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if c := (graph.Cycle{From: file, To: dep}); p.back[c] {
			p.reportCycle(c)
			continue
		}
		if err := p.ProcessFile(ctx, dep); err != nil && !p.opts.KeepGoing {
			return err
		}
	}
	return p.processOne(ctx, file)
}

// processOne converts file alone; its dependencies are already settled.
func (p *Processor) processOne(ctx context.Context, file string) error {
	if p.state.IsProcessed(file) {
		if !p.seen[file] {
			p.seen[file] = true
			p.log.Info(fmt.Sprintf("Skip %s because it has been processed", file))
			p.opts.Events.Emit(session.Event{Type: session.EventFileSkipped, File: file, Reason: session.ReasonProcessed})
		}
		return nil
	}
	if err, ok := p.failed[file]; ok {
		return err
	}
	if cause, ok := p.blocked[file]; ok {
		skipErr := fmt.Errorf("%s skipped: dependency %s failed", file, cause)
		p.failed[file] = skipErr
		p.log.Warn("Skip file because a dependency failed", p.log.Args("file", file, "dependency", cause))
		p.opts.Events.Emit(session.Event{Type: session.EventFileSkipped, File: file, Dep: cause, Reason: session.ReasonDependency})
		return skipErr
	}

	if err := p.convert(ctx, file); err != nil {
		err = fmt.Errorf("%s: %w", file, err)
		p.failed[file] = err
		p.failures = append(p.failures, err)
		for _, d := range p.graph.Transitive(file) {
			if _, ok := p.blocked[d]; !ok && !p.state.IsProcessed(d) {
				p.blocked[d] = file
			}
		}
		p.log.Error("Conversion failed", p.log.Args("file", file, "error", logging.Mask(err.Error())))
		p.opts.Events.Emit(session.Event{Type: session.EventFileFailed, File: file, Reason: logging.Mask(err.Error())})
		return err
	}
	return nil
}

func (p *Processor) reportCycle(c graph.Cycle) {
	if p.reported[c] {
		return
	}
	p.reported[c] = true
	p.log.Warn("Dependency cycle, converting without waiting for dependency", p.log.Args("file", c.From, "dependency", c.To))
	p.opts.Events.Emit(session.Event{Type: session.EventCycle, File: c.From, Dep: c.To})
}

func (p *Processor) convert(ctx context.Context, file string) error {
	p.log.Info("Processing " + file)
	p.opts.Events.Emit(session.Event{Type: session.EventFileStarted, File: file})

	code, err := os.ReadFile(scan.OSPath(p.opts.WorkDir, file))
	if err != nil {
		return perr.Wrap(perr.ScanFailed, "cannot read source", err)
	}
	gen, cached, err := p.Generate(ctx, string(code))
	if err != nil {
		return err
	}

	out, err := p.write(file, gen.JavaCode)
	if err != nil {
		return err
	}
	added := p.state.AddSymbols(gen.Symbols...)
	p.state.MarkProcessed(file)
	p.seen[file] = true
	if out != "" {
		p.state.Outputs[file] = out
	}
	if err := p.state.Save(p.path); err != nil {
		return err
	}
	p.opts.Events.Emit(session.Event{Type: session.EventFileDone, File: file, Output: out, Symbols: added, Cached: cached})
	return nil
}

// Generate asks the model to convert code with the current symbol table.
func (p *Processor) Generate(ctx context.Context, code string) (Generated, bool, error) {
	text, err := p.opts.Prompts.GenerateJava(code, p.state.Symbols())
	if err != nil {
		return Generated{}, false, perr.Wrap(perr.GenerationFailed, "render prompt", err)
	}
	resp, err := p.opts.Client.Complete(ctx, llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: text}},
		Model:     p.opts.Model,
		MaxTokens: p.opts.MaxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return Generated{}, false, perr.Wrap(perr.ProviderFailed, "generation request failed", err)
	}
	var gen Generated
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &gen); err != nil {
		return Generated{}, false, perr.Wrap(perr.MalformedResponse, "generation answer is not the expected JSON", err)
	}
	if strings.TrimSpace(gen.JavaCode) == "" {
		return Generated{}, false, perr.New(perr.MalformedResponse, "generation answer has no java_code")
	}
	return gen, resp.Cached, nil
}

// OutputPath maps a file key to its .java path under dir.
func OutputPath(dir, file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, filepath.FromSlash(base)+".java")
}

func (p *Processor) write(file, code string) (string, error) {
	if p.opts.OutputDir == "" {
		_, err := fmt.Fprintf(p.opts.Stdout, "Generated code for %s\n---\n%s\n---\n", file, code)
		if err != nil {
			return "", perr.Wrap(perr.OutputFailed, "write to stdout", err)
		}
		return "", nil
	}

	out := OutputPath(p.opts.OutputDir, file)
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", perr.Wrap(perr.OutputFailed, "create output directory", err)
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
		return "", perr.Wrap(perr.OutputFailed, "write "+out, err)
	}
	return out, nil
}
