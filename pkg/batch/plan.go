package batch

import (
	"strconv"
	"strings"
)

// Invocation is one planned external tool call. Args are passed to the
// process as-is; there is no shell in between.
type Invocation struct {
	ItemID  string   // strain or sample the call is for
	Program string   // executable name or path
	Args    []string // argument vector, excluding the program
	Dirs    []string // directories that must exist before the call
}

// CommandLine renders the invocation for logs. Arguments that a shell would
// split are quoted; the result is never executed.
func (inv Invocation) CommandLine() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, quoteArg(inv.Program))
	for _, a := range inv.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n'\"\\$`") {
		return strconv.Quote(s)
	}
	return s
}

// Copy is a staging step that runs before any invocation.
type Copy struct {
	ItemID string
	Src    string
	Dst    string
}

// Plan is the full, ordered list of actions for one batch.
type Plan struct {
	Name        string // subcommand, recorded in the ledger
	Dirs        []string
	Copies      []Copy
	Invocations []Invocation
}
