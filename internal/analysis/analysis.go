// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package analysis asks the model which packages each source file declares and
// calls, and links the answers into a file dependency graph.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	perr "procport/cli/internal/errors"
	"procport/cli/internal/llm"
	"procport/cli/internal/logging"
	"procport/cli/internal/prompt"
	"procport/cli/internal/scan"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight reference extraction calls.
const DefaultConcurrency = 4

// Refs is the model's answer for one file.
type Refs struct {
	// Deps are external calls in "package.function" form, optionally
	// schema-qualified.
	Deps []string `json:"deps"`
	// Packages are the package names the file declares.
	Packages []string `json:"package_name"`
}

// UnmarshalJSON accepts package_name as a list or a single string.
func (r *Refs) UnmarshalJSON(data []byte) error {
	var raw struct {
		Deps     []string        `json:"deps"`
		Packages json.RawMessage `json:"package_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Deps = raw.Deps
	r.Packages = nil
	if len(raw.Packages) == 0 || string(raw.Packages) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw.Packages, &one); err == nil {
		if one != "" {
			r.Packages = []string{one}
		}
		return nil
	}
	return json.Unmarshal(raw.Packages, &r.Packages)
}

// Analyzer runs reference extraction.
type Analyzer struct {
	Client      llm.Client
	Prompts     *prompt.Set
	Model       string
	MaxTokens   int
	Concurrency int
	Log         *pterm.Logger
	// OnFile, when set, is called after each file is analyzed. It may be
	// called from several goroutines.
	OnFile func(file string, done, total int)
}

func (a *Analyzer) logger() *pterm.Logger {
	if a.Log == nil {
		return logging.Discard()
	}
	return a.Log
}

// ParseRefs extracts the declared packages and external calls of code.
func (a *Analyzer) ParseRefs(ctx context.Context, code string) (Refs, error) {
	prompts := a.Prompts
	if prompts == nil {
		prompts = prompt.Default()
	}
	text, err := prompts.ParseRefs(code)
	if err != nil {
		return Refs{}, perr.Wrap(perr.AnalysisFailed, "render prompt", err)
	}
	resp, err := a.Client.Complete(ctx, llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: text}},
		Model:     a.Model,
		MaxTokens: a.MaxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return Refs{}, perr.Wrap(perr.ProviderFailed, "reference extraction request failed", err)
	}
	var refs Refs
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &refs); err != nil {
		return Refs{}, perr.Wrap(perr.MalformedResponse, "reference extraction answer is not the expected JSON", err)
	}
	return refs, nil
}

// BuildGraph analyzes every file under dir and returns file -> dependency files.
// Every file is a key; dependency lists are sorted and de-duplicated.
func (a *Analyzer) BuildGraph(ctx context.Context, dir string, files []string) (map[string][]string, error) {
	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu   sync.Mutex
		refs = make(map[string]Refs, len(files))
		done atomic.Int32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, file := range files {
		g.Go(func() error {
			code, err := os.ReadFile(scan.OSPath(dir, file))
			if err != nil {
				return perr.Wrap(perr.ScanFailed, "read "+file, err)
			}
			r, err := a.ParseRefs(gctx, string(code))
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			a.logger().Debug("analyzed", a.logger().Args("file", file, "packages", r.Packages, "deps", len(r.Deps)))

			mu.Lock()
			refs[file] = r
			mu.Unlock()
			if a.OnFile != nil {
				a.OnFile(file, int(done.Add(1)), len(files))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Link(refs, a.logger()), nil
}

// Link resolves each file's dependencies to the files declaring them.
// Package names match case-insensitively. A dependency is resolved by its
// first segment, then by its second for schema-qualified calls. Self
// references are dropped.
func Link(refs map[string]Refs, log *pterm.Logger) map[string][]string {
	if log == nil {
		log = logging.Discard()
	}
	files := make([]string, 0, len(refs))
	for f := range refs {
		files = append(files, f)
	}
	sort.Strings(files)

	owner := map[string]string{}
	for _, f := range files {
		for _, pkg := range refs[f].Packages {
			key := normalize(pkg)
			if key == "" {
				continue
			}
			if prev, ok := owner[key]; ok && prev != f {
				log.Warn("package declared in more than one file", log.Args("package", pkg, "using", prev, "ignoring", f))
				continue
			}
			owner[key] = f
		}
	}

	out := make(map[string][]string, len(files))
	for _, f := range files {
		set := map[string]struct{}{}
		for _, dep := range refs[f].Deps {
			target, ok := resolve(owner, dep)
			if !ok || target == f {
				continue
			}
			set[target] = struct{}{}
		}
		deps := make([]string, 0, len(set))
		for d := range set {
			deps = append(deps, d)
		}
		sort.Strings(deps)
		out[f] = deps
	}
	return out
}

func resolve(owner map[string]string, dep string) (string, bool) {
	parts := strings.Split(dep, ".")
	if f, ok := owner[normalize(parts[0])]; ok {
		return f, true
	}
	if len(parts) > 2 {
		if f, ok := owner[normalize(parts[1])]; ok {
			return f, true
		}
	}
	return "", false
}

func normalize(name string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(name), `"`))
}
