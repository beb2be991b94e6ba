// Package shell implements the fake bash environment attackers interact
// with: a command registry, a dispatcher with a minimal pipe operator, and
// the handlers for each simulated coreutil.
package shell

import (
	"fmt"

	"github.com/marmos91/glasshouse/pkg/filesystem"
)

// Context is the mutable state threaded through every command invocation
// for one session. cd is the only handler allowed to mutate Cwd.
type Context struct {
	Cwd      string
	Username string
	Hostname string
	FS       *filesystem.FS
	AuthID   string
	Env      map[string]string
}

// NewContext builds a Context starting at the user's home directory with
// the standard set of environment variables a login shell would export.
func NewContext(username, hostname string, fs *filesystem.FS, authID string) *Context {
	home := fmt.Sprintf("/home/%s", username)
	return &Context{
		Cwd:      home,
		Username: username,
		Hostname: hostname,
		FS:       fs,
		AuthID:   authID,
		Env: map[string]string{
			"USER":     username,
			"HOME":     home,
			"PWD":      home,
			"HOSTNAME": hostname,
			"SHELL":    "/bin/bash",
			"PATH":     "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		},
	}
}

// SetCwd updates the working directory and mirrors it into $PWD.
func (c *Context) SetCwd(newCwd string) {
	c.Cwd = newCwd
	c.Env["PWD"] = newCwd
}

// Home returns the current user's home directory.
func (c *Context) Home() string {
	return fmt.Sprintf("/home/%s", c.Username)
}

// Prompt renders the bash-style prompt shown after every command.
func (c *Context) Prompt() string {
	display := c.Cwd
	if display == c.Home() {
		display = "~"
	}
	return fmt.Sprintf("%s@%s:%s$ ", c.Username, c.Hostname, display)
}
