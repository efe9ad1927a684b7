// Package normalize implements heuristic rewrites of uninstall commands.
// Each installer family has its own rule deciding whether it applies and how
// the command is rewritten.
package normalize

import "regexp"

// Rule is the strategy interface for one installer family.
type Rule interface {
	// ID returns a unique identifier (e.g., "msi").
	ID() string

	// Matches reports whether the command belongs to this family.
	Matches(command string) bool

	// Rewrite returns the uninstall-mode form of a matching command.
	Rewrite(command string) string
}

// MSIRule turns Windows Installer install invocations into removals.
//
// Known limitation: switches are not parsed positionally, so any "/I" in the
// string is rewritten, including ones that belong to unrelated data such as
// a path segment.
type MSIRule struct{}

var installSwitch = regexp.MustCompile(`(?i)/i`)

// NewMSIRule creates the msiexec rule.
func NewMSIRule() *MSIRule {
	return &MSIRule{}
}

func (r *MSIRule) ID() string {
	return "msi"
}

func (r *MSIRule) Matches(command string) bool {
	return containsFold(command, "msiexec")
}

func (r *MSIRule) Rewrite(command string) string {
	return installSwitch.ReplaceAllString(command, "/X")
}

var _ Rule = (*MSIRule)(nil)
