// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
)

// spinnerFrames are the stick frames used by inline spinners.
var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner draws frames followed by text on the current line of w
// until the returned function is called. Stopping clears the line. Calling
// stop more than once is safe.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()

	done := false
	return func() {
		if done {
			return
		}
		done = true
		close(stop)
		<-stopped
	}
}

// spin runs fn behind an inline spinner on interactive terminals.
func spin(w io.Writer, interactive bool, text string, fn func() error) error {
	if !interactive {
		return fn()
	}
	stop := startInlineSpinner(w, text, spinnerFrames, 100*time.Millisecond)
	defer stop()
	return fn()
}

// box prints body inside a titled pterm box.
func box(w io.Writer, title, body string) {
	pterm.Fprintln(w, pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title)).
		WithPadding(1).
		Sprint(body))
}
