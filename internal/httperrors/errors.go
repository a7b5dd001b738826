// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures talking to a model provider or
// the publish database into user-friendly messages.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Kind classifies a network failure.
type Kind string

const (
	KindNone    Kind = ""
	KindTimeout Kind = "timeout"
	KindDNS     Kind = "dns"
	KindRefused Kind = "refused"
	KindTLS     Kind = "tls"
	KindServer  Kind = "server"
	KindOther   Kind = "network"
)

// Classify returns the kind of network failure err represents, or KindNone
// when err does not look like a transport problem.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	switch {
	case isTimeoutError(err):
		return KindTimeout
	case isDNSError(err):
		return KindDNS
	case isConnectionRefusedError(err):
		return KindRefused
	case isSSLError(err):
		return KindTLS
	case isServerError(err.Error()):
		return KindServer
	}
	var opErr *net.OpError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &urlErr) {
		return KindOther
	}
	return KindNone
}

// Present writes a friendly explanation of err to w. action describes what
// was being done ("contacting openai"), host is the endpoint host. It reports
// whether err was recognized as a network failure.
func Present(w io.Writer, err error, action, host string) bool {
	kind := Classify(err)
	if kind == KindNone {
		return false
	}
	if host == "" {
		host = "the server"
	}

	var lines []string
	switch kind {
	case KindTimeout:
		pterm.Fprintln(w, fmt.Sprintf("⏱️  Timed out while %s", action))
		lines = []string{
			host + " took too long to respond. This could mean:",
			"  • Slow or unstable network connection",
			"  • The provider is under heavy load",
			"  • A very large file; try a smaller --max-tokens or a faster model",
		}
	case KindDNS:
		pterm.Fprintln(w, fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action))
		lines = []string{
			"Please check:",
			"  • Your internet connection is working",
			"  • The base URL in your config or OPENAI_BASE_URL / OLLAMA_HOST",
		}
	case KindRefused:
		pterm.Fprintln(w, fmt.Sprintf("🚫 Connection refused by %s while %s", host, action))
		lines = []string{
			"Nothing is listening at that address. If you use ollama, start it with 'ollama serve'.",
		}
	case KindTLS:
		pterm.Fprintln(w, fmt.Sprintf("🔒 Secure connection to %s failed while %s", host, action))
		lines = []string{
			"Try:",
			"  • Check your system date and time",
			"  • Verify network proxy settings",
		}
	case KindServer:
		pterm.Fprintln(w, fmt.Sprintf("⚠️  %s returned a server error while %s", host, action))
		lines = []string{
			"This is not a problem with your setup. Completed files are saved;",
			"run the same command again to resume.",
		}
	default:
		pterm.Fprintln(w, fmt.Sprintf("❌ Network error while %s", action))
		lines = []string{"Please check your connection and firewall settings."}
	}
	for _, l := range lines {
		pterm.Fprintln(w, l)
	}
	return true
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls:") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, s := range []string{"status 500", "status 502", "status 503", "status 504",
		"internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
