// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides utilities for terminal operations such as clearing
// echoed input and reading secrets without echo.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// IsInteractive reports whether f is a terminal (including Cygwin/MSYS ptys).
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ClearPreviousLines clears textLength characters of previously printed text,
// plus the line the cursor moved to when Enter was pressed. The line count is
// derived from the terminal width (80 when unknown).
func ClearPreviousLines(textLength int) {
	if !IsInteractive(os.Stdout) {
		return
	}
	termWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}
	linesToClear := totalLines + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A")
		}
	}
}

// ReadSecret prints prompt and reads one line. On a terminal input is not
// echoed; otherwise the line is read from in as-is, which keeps piped input
// and scripted tests working.
func ReadSecret(prompt string, in *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)
	if IsInteractive(in) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return ReadLine(in)
}

// ReadLine reads one line from r without its line ending.
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
