package shell

import (
	"fmt"
	"strings"

	"github.com/marmos91/glasshouse/pkg/filesystem"
)

type pwdHandler struct{}

func (pwdHandler) Execute(_ string, ctx *Context) string {
	return ctx.Cwd + "\r\n"
}

type whoamiHandler struct{}

func (whoamiHandler) Execute(_ string, ctx *Context) string {
	return ctx.Username + "\r\n"
}

type idHandler struct{}

func (idHandler) Execute(_ string, ctx *Context) string {
	uid, gid := uidGidFor(ctx.Username)
	if ctx.Username == "root" {
		return fmt.Sprintf("uid=%d(root) gid=%d(root) groups=%d(root)\r\n", uid, gid, gid)
	}
	return fmt.Sprintf("uid=%d(%s) gid=%d(%s) groups=%d(%s),4(adm),24(cdrom),27(sudo)\r\n",
		uid, ctx.Username, gid, ctx.Username, gid, ctx.Username)
}

// uidGidFor maps known honeypot accounts to plausible ids, mirroring the
// small uid→name table ls uses for owner rendering.
func uidGidFor(username string) (int, int) {
	switch username {
	case "root":
		return 0, 0
	case "www-data":
		return 33, 33
	default:
		return 1000, 1000
	}
}

type cdHandler struct{}

func (cdHandler) Execute(args string, ctx *Context) string {
	target := strings.TrimSpace(args)
	if target == "" || target == "~" || target == "-" {
		ctx.SetCwd(ctx.Home())
		return ""
	}

	resolved := ctx.FS.Resolve(ctx.Cwd, target)
	inode, err := ctx.FS.Get(ctx.Cwd, target)
	if err != nil {
		if code, ok := filesystem.Code(err); ok && code == filesystem.ErrNotDirectory {
			return fmt.Sprintf("bash: cd: %s: Not a directory\r\n", target)
		}
		return fmt.Sprintf("bash: cd: %s: No such file or directory\r\n", target)
	}
	if inode.Kind != filesystem.KindDirectory {
		return fmt.Sprintf("bash: cd: %s: Not a directory\r\n", target)
	}

	ctx.SetCwd(resolved)
	return ""
}

type sudoHandler struct{}

func (sudoHandler) Execute(_ string, ctx *Context) string {
	return fmt.Sprintf("Sorry, user %s may not run sudo on %s.\r\n", ctx.Username, ctx.Hostname)
}

type missingURLHandler struct {
	name string
}

func (h missingURLHandler) Execute(args string, _ *Context) string {
	if strings.TrimSpace(args) != "" {
		return fmt.Sprintf("%s: unable to resolve host address\r\n", h.name)
	}
	return fmt.Sprintf("%s: missing URL\r\nUsage: %s [OPTION]... [URL]...\r\n\r\nTry `%s --help' for more options.\r\n", h.name, h.name, h.name)
}

type catHandler struct{}

func (catHandler) Execute(args string, ctx *Context) string {
	path := strings.TrimSpace(args)
	if path == "" {
		return ""
	}

	content, err := ctx.FS.ReadFile(ctx.Cwd, path)
	if err != nil {
		if code, ok := filesystem.Code(err); ok && code == filesystem.ErrIsDirectory {
			return fmt.Sprintf("cat: %s: Is a directory\r\n", path)
		}
		return fmt.Sprintf("cat: %s: No such file or directory\r\n", path)
	}
	return string(content)
}
