package shell

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/marmos91/glasshouse/internal/bytesize"
	"github.com/marmos91/glasshouse/pkg/filesystem"
)

type lsOptions struct {
	all         bool
	almostAll   bool
	longFormat  bool
	humanSizes  bool
	sortTime    bool
	sortSize    bool
	reverse     bool
	onePerLine  bool
	showInode   bool
	classify    bool
	directory   bool
}

func parseLsArgs(args string) (lsOptions, string) {
	var opts lsOptions
	target := "."

	for _, tok := range strings.Fields(args) {
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			target = tok
			continue
		}
		if strings.HasPrefix(tok, "--") {
			switch tok {
			case "--all":
				opts.all = true
			case "--almost-all":
				opts.almostAll = true
			case "--human-readable":
				opts.humanSizes = true
			case "--reverse":
				opts.reverse = true
			case "--inode":
				opts.showInode = true
			case "--classify":
				opts.classify = true
			case "--directory":
				opts.directory = true
			}
			continue
		}
		for _, c := range tok[1:] {
			switch c {
			case 'a':
				opts.all = true
			case 'A':
				opts.almostAll = true
			case 'l':
				opts.longFormat = true
			case 'h':
				opts.humanSizes = true
			case 't':
				opts.sortTime = true
			case 'S':
				opts.sortSize = true
			case 'r':
				opts.reverse = true
			case '1':
				opts.onePerLine = true
			case 'i':
				opts.showInode = true
			case 'F':
				opts.classify = true
			case 'd':
				opts.directory = true
			}
		}
	}
	return opts, target
}

// humanFileSize renders sizes the way `ls -h` does, delegating to
// bytesize.ByteSize for the actual unit scaling and formatting and then
// shortening its unit to a single K/M/G/T letter (plain bytes get none).
func humanFileSize(size int64) string {
	if size == 0 {
		return "0"
	}
	s := bytesize.ByteSize(size).String()
	if strings.HasSuffix(s, "iB") {
		return strings.TrimSuffix(s, "iB")
	}
	return strings.TrimSuffix(s, "B")
}

func permissionString(kind filesystem.Kind, mode uint32) string {
	var typeChar byte
	switch kind {
	case filesystem.KindDirectory:
		typeChar = 'd'
	case filesystem.KindSymlink:
		typeChar = 'l'
	default:
		typeChar = '-'
	}

	bits := []struct {
		mask uint32
		ch   byte
	}{
		{0o400, 'r'}, {0o200, 'w'}, {0o100, 'x'},
		{0o040, 'r'}, {0o020, 'w'}, {0o010, 'x'},
		{0o004, 'r'}, {0o002, 'w'}, {0o001, 'x'},
	}

	out := make([]byte, 0, 10)
	out = append(out, typeChar)
	for _, b := range bits {
		if mode&b.mask != 0 {
			out = append(out, b.ch)
		} else {
			out = append(out, '-')
		}
	}
	return string(out)
}

func ownerName(owner string) string {
	switch owner {
	case "root", "www-data":
		return owner
	case "":
		return "user"
	default:
		return owner
	}
}

func formatLsTimestamp(t time.Time) string {
	if time.Since(t) > 180*24*time.Hour {
		return t.Format("Jan _2  2006")
	}
	return t.Format("Jan _2 15:04")
}

func classifySuffix(kind filesystem.Kind, mode uint32) string {
	switch kind {
	case filesystem.KindDirectory:
		return "/"
	case filesystem.KindSymlink:
		return "@"
	default:
		if mode&0o111 != 0 {
			return "*"
		}
		return ""
	}
}

// lsHandler renders directory listings from the simulated filesystem,
// matching GNU ls's short/long/classify/sort flag surface described in
// SPEC_FULL.md §4.2.
type lsHandler struct{}

func (lsHandler) Execute(args string, ctx *Context) string {
	opts, target := parseLsArgs(args)

	inode, err := ctx.FS.Get(ctx.Cwd, target)
	if err != nil {
		return fmt.Sprintf("ls: cannot access '%s': No such file or directory\r\n", target)
	}

	if opts.directory || inode.Kind != filesystem.KindDirectory {
		e := inode.Entry()
		return formatLsEntry(e.Name, e.Kind, e.Mode, e.Size, e.Owner, e.Group, e.ModTime, e.Target, opts) + "\r\n"
	}

	entries, err := ctx.FS.List(ctx.Cwd, target)
	if err != nil {
		return fmt.Sprintf("ls: cannot access '%s': No such file or directory\r\n", target)
	}

	if !opts.all && !opts.almostAll {
		filtered := entries[:0]
		for _, e := range entries {
			if !strings.HasPrefix(e.Name, ".") {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if opts.all {
		self := inode.Entry()
		self.Name = "."
		parent := self
		parent.Name = ".."
		entries = append([]filesystem.DirEntry{self, parent}, entries...)
	}

	switch {
	case opts.sortTime:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ModTime.After(entries[j].ModTime) })
	case opts.sortSize:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Size > entries[j].Size })
	default:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	}
	if opts.reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, formatLsEntry(e.Name, e.Kind, e.Mode, e.Size, e.Owner, e.Group, e.ModTime, e.Target, opts))
	}

	if opts.longFormat || opts.onePerLine {
		return strings.Join(lines, "\r\n") + "\r\n"
	}
	return strings.Join(lines, "  ") + "\r\n"
}

func formatLsEntry(name string, kind filesystem.Kind, mode uint32, size int64, owner, group string, modTime time.Time, target string, opts lsOptions) string {
	display := name
	if opts.classify {
		display += classifySuffix(kind, mode)
	}
	if kind == filesystem.KindSymlink && target != "" {
		display = name + " -> " + target
	}

	if !opts.longFormat {
		return display
	}

	sizeStr := fmt.Sprintf("%d", size)
	if opts.humanSizes {
		sizeStr = humanFileSize(size)
	}

	return fmt.Sprintf("%s 1 %-8s %-8s %5s %s %s",
		permissionString(kind, mode), ownerName(owner), ownerName(group), sizeStr, formatLsTimestamp(modTime), display)
}
