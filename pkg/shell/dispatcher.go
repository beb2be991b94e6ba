package shell

import (
	"strings"
)

// Dispatcher executes a typed command line against a Registry.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher wraps a Registry. NewDefaultRegistry is the usual source.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Execute runs one command line per SPEC_FULL.md §4.2's dispatch algorithm:
// split on every pipe, resolve the primary command, apply any `grep`
// pipe stages to its output, and fall back to bash's "command not found"
// message for unknown names.
func (d *Dispatcher) Execute(line string, ctx *Context) string {
	if strings.TrimSpace(line) == "" {
		return ""
	}

	stages := strings.Split(line, "|")
	primary := strings.TrimSpace(stages[0])

	name, args := splitNameArgs(primary)

	var output string
	if handler, _, ok := d.registry.Lookup(name); ok {
		output = handler.Execute(args, ctx)
	} else {
		output = "bash: " + name + ": command not found\r\n"
	}

	for _, stage := range stages[1:] {
		stage = strings.TrimSpace(stage)
		if strings.HasPrefix(stage, "grep ") {
			pattern := strings.TrimSpace(stage[len("grep "):])
			output = applyGrep(output, pattern)
		}
		// Unknown pipe stages are silently ignored: plausible silence beats
		// an error that reveals the simulation.
	}

	return output
}

func splitNameArgs(primary string) (name, args string) {
	idx := strings.IndexAny(primary, " \t")
	if idx < 0 {
		return primary, ""
	}
	return primary[:idx], strings.TrimSpace(primary[idx+1:])
}

// applyGrep keeps lines of output containing pattern, newline-joined with
// a trailing newline, matching real grep's line-oriented substring match.
func applyGrep(output, pattern string) string {
	lines := strings.Split(strings.TrimRight(output, "\r\n"), "\n")
	var kept []string
	for _, line := range lines {
		if strings.Contains(line, pattern) {
			kept = append(kept, strings.TrimRight(line, "\r"))
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}
