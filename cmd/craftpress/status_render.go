package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
)

const verdictNameWidth = 18

// renderVerdictLine formats one connectivity-check result. Only the verdict
// token is colored so piped output stays grep-friendly.
func renderVerdictLine(name string, passed bool, detail string, colorize bool) string {
	verdict, color := "OK", ansiGreen
	if !passed {
		verdict, color = "ERROR", ansiRed
	}
	if colorize {
		verdict = color + verdict + ansiReset
	}
	line := fmt.Sprintf("  %-*s %s", verdictNameWidth, name, verdict)
	if detail != "" {
		line += "  " + detail
	}
	return line
}

func renderSectionHeader(title string, colorize bool) string {
	header := fmt.Sprintf("--- %s ---", strings.TrimSpace(title))
	if colorize {
		return ansiCyan + header + ansiReset
	}
	return header
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
