// Package ui renders the command-line output of the translator.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/hpn/gpt-translator/internal/security"
)

var (
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)

	errorText  = color.New(color.FgRed)
	mutedText  = color.New(color.FgHiBlack)
	accentText = color.New(color.FgMagenta, color.Bold)
	neonBlue   = color.New(color.FgHiCyan, color.Bold)

	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// PrintTranslation writes a single translation. Only the translated text goes
// to w so the output can be piped.
func PrintTranslation(w io.Writer, translated string) {
	fmt.Fprintln(w, translated)
}

// PrintBatch writes one translation per line, prefixed with its index.
func PrintBatch(w io.Writer, translations []string) {
	for i, t := range translations {
		mutedText.Fprintf(w, "%d ", i+1)
		fmt.Fprintln(w, t)
	}
}

// PrintSettings writes the resolved translator settings.
// Format: [TRANSLATOR] auto → french | gpt-3.5-turbo | https://api.openai.com/v1
func PrintSettings(w io.Writer, source, target, model, baseURL string) {
	infoBadge.Fprint(w, "[TRANSLATOR]")
	fmt.Fprint(w, " ")
	mutedText.Fprint(w, source)
	fmt.Fprint(w, " → ")
	accentText.Fprint(w, target)
	fmt.Fprint(w, " | ")
	neonBlue.Fprint(w, model)
	if baseURL != "" {
		fmt.Fprint(w, " | ")
		mutedText.Fprint(w, security.Redact(baseURL))
	}
	fmt.Fprintln(w)
}

// PrintError writes a styled error line.
func PrintError(w io.Writer, err error) {
	errorBadge.Fprint(w, " ERROR ")
	fmt.Fprint(w, " ")
	errorText.Fprintln(w, security.Redact(err.Error()))
}

// PrintServerInfo writes the listen address and routes of the serve command.
func PrintServerInfo(w io.Writer, addr string) {
	fmt.Fprintln(w)
	infoBadge.Fprint(w, "[TRANSLATOR]")
	fmt.Fprint(w, " Server listening on ")
	neonBlue.Fprintf(w, "http://%s\n", addr)
	fmt.Fprintln(w)

	printRoute(w, methodPOST, "POST", "/v1/translate", "Translate one text")
	printRoute(w, methodPOST, "POST", "/v1/translate/batch", "Translate a list of texts")
	printRoute(w, methodGET, "GET", "/health", "Health check")
	fmt.Fprintln(w)
}

func printRoute(w io.Writer, badge *color.Color, method, path, desc string) {
	fmt.Fprint(w, "  ")
	badge.Fprintf(w, " %-4s ", method)
	fmt.Fprintf(w, " %-22s ", path)
	mutedText.Fprintln(w, desc)
}

// PrintShutdown writes the graceful shutdown notice.
func PrintShutdown(w io.Writer) {
	fmt.Fprintln(w)
	infoBadge.Fprintln(w, "[SHUTDOWN] Graceful shutdown initiated...")
}

// PrintGoodbye writes the final line after the server stopped.
func PrintGoodbye(w io.Writer) {
	successBadge.Fprint(w, " OK ")
	fmt.Fprintln(w, " Server stopped.")
}
