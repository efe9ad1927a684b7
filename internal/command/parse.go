// Package command splits uninstall command strings into an executable and
// its argument string.
//
// Uninstall strings in the registry are inconsistently quoted, so the parser
// is lenient: it prefers a quote-aware split and falls back to simpler rules
// instead of rejecting the input.
package command

import (
	"errors"
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
)

var (
	errUnbalancedQuote = errors.New("unbalanced quote")
	errTrailingQuote   = errors.New("text directly after closing quote")
	errEmptyExecutable = errors.New("empty executable")
)

// ParseExec splits raw into the executable and the verbatim remainder.
// ok is false when no executable could be isolated; callers should then
// hand the whole string to the shell.
func ParseExec(raw string) (exe string, ok bool, args string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false, ""
	}

	if exe, args, err := splitQuoted(s); err == nil {
		return exe, true, args
	}
	return fallback(s)
}

// splitQuoted is the strict path. A leading quote must close and be followed
// by whitespace or the end of input, and the string must not contain a
// dangling quote anywhere.
func splitQuoted(s string) (string, string, error) {
	if strings.Count(s, `"`)%2 != 0 {
		return "", "", errUnbalancedQuote
	}

	if s[0] == '"' {
		end := strings.IndexByte(s[1:], '"')
		if end < 0 {
			return "", "", errUnbalancedQuote
		}
		end++
		if end+1 < len(s) && !isSpace(rune(s[end+1])) {
			return "", "", errTrailingQuote
		}
		exe := strings.TrimSpace(s[1:end])
		if exe == "" {
			return "", "", errEmptyExecutable
		}
		return exe, strings.TrimSpace(s[end+1:]), nil
	}

	// Unquoted paths with spaces are common ("C:\Program Files\x\un.exe /S").
	if i := exeSuffixEnd(s); i > 0 {
		return s[:i], strings.TrimSpace(s[i:]), nil
	}

	exe, args := splitFirstSpace(s)
	return exe, args, nil
}

// fallback: leading quote up to the next quote, else first space.
func fallback(s string) (string, bool, string) {
	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end > 0 {
			return s[1 : end+1], true, strings.TrimSpace(s[end+2:])
		}
	}

	exe, args := splitFirstSpace(s)
	exe = strings.Trim(exe, `"`)
	if exe == "" {
		return "", false, ""
	}
	return exe, true, args
}

// exeSuffixEnd returns the index just past the first ".exe" that ends a
// token, or -1. The match is rejected once a switch has been passed, since
// the executable can only span the leading tokens.
func exeSuffixEnd(s string) int {
	lower := strings.ToLower(s)
	from := 0
	for {
		i := strings.Index(lower[from:], ".exe")
		if i < 0 {
			return -1
		}
		end := from + i + len(".exe")
		if hasSwitch(s[:end]) {
			return -1
		}
		if end == len(s) || isSpace(rune(s[end])) {
			return end
		}
		from = end
	}
}

// hasSwitch reports whether any token after the first starts with / or -.
func hasSwitch(prefix string) bool {
	toks := strings.Fields(prefix)
	for _, tok := range toks[1:] {
		if strings.HasPrefix(tok, "/") || strings.HasPrefix(tok, "-") {
			return true
		}
	}
	return false
}

func splitFirstSpace(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// SplitArgs breaks an argument string into argv entries for platforms that
// launch by argv rather than by a raw command line.
func SplitArgs(args string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	if toks, err := shellquote.Split(args); err == nil {
		return toks
	}
	return strings.Fields(args)
}
