// Package filesystem implements the in-memory directory tree presented to
// attackers over the SSH/SFTP session. It never touches the host's real
// filesystem: every path, inode and byte lives in process memory and is
// seeded once at startup from a base tar.gz image.
package filesystem

import (
	"path"
	"strings"
	"sync"
)

const maxSymlinkDepth = 16

// FS is the singleton simulated filesystem tree. A single RWMutex guards
// the whole tree: reads (ls, cat, stat) take RLock, mutations (mkdir,
// touch, symlink, ingest) take Lock. The tree is small and operations are
// cheap, so a coarse lock keeps the implementation simple without becoming
// a contention point.
type FS struct {
	mu   sync.RWMutex
	root *Inode
}

// New returns an FS with an empty root directory owned by root:root.
func New() *FS {
	return &FS{root: newDirectory("/", "root", "root")}
}

// Root returns the root inode's DirEntry, mainly for diagnostics.
func (fs *FS) Root() DirEntry {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.root.entry()
}

// splitPath cleans an absolute or relative path against cwd and splits it
// into its non-empty components. The path is cleaned lexically first, so
// "." and ".." are folded away before the walker sees the components, and
// ".." at the root stays at the root.
func splitPath(cwd, p string) []string {
	if p == "" {
		p = "."
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(cwd, p)
	}
	p = path.Clean(p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// resolve walks from root through parts, following symlinks along the way.
// followLast controls whether a symlink in the final position is itself
// followed (true for most lookups, false for operations like readlink or
// lstat-style listing).
func (fs *FS) resolve(parts []string, followLast bool) (*Inode, string, error) {
	cur := fs.root
	curPath := "/"
	depth := 0

	var walk func(parts []string) error
	walk = func(parts []string) error {
		for i := 0; i < len(parts); i++ {
			part := parts[i]
			switch part {
			case ".":
				continue
			case "..":
				// The simulated tree has no parent pointers; ".." above
				// root or inside a directory without a stored parent
				// link simply stays put, matching a chrooted shell.
				continue
			}

			if cur.Kind != KindDirectory {
				return newErr(ErrNotDirectory, curPath)
			}
			child, ok := cur.Children[part]
			if !ok {
				return newErr(ErrNotFound, path.Join(curPath, part))
			}

			isLast := i == len(parts)-1
			if child.Kind == KindSymlink && (!isLast || followLast) {
				depth++
				if depth > maxSymlinkDepth {
					return newErr(ErrLinkCycle, path.Join(curPath, part))
				}
				target := child.Target
				var targetParts []string
				if strings.HasPrefix(target, "/") {
					targetParts = splitPath("/", target)
				} else {
					targetParts = splitPath(curPath, target)
				}
				targetParts = append(targetParts, parts[i+1:]...)
				cur = fs.root
				curPath = "/"
				return walk(targetParts)
			}

			cur = child
			curPath = path.Join(curPath, part)
		}
		return nil
	}

	if err := walk(parts); err != nil {
		return nil, "", err
	}
	return cur, curPath, nil
}

// Resolve returns the absolute, lexically cleaned path string for p
// evaluated against cwd, without checking that it actually exists.
// Symlinks along the path are not resolved.
func (fs *FS) Resolve(cwd, p string) string {
	if !strings.HasPrefix(p, "/") {
		p = path.Join(cwd, p)
	}
	return path.Clean(p)
}

// Get looks up p (relative to cwd) and returns its inode, following
// symlinks in the final position.
func (fs *FS) Get(cwd, p string) (*Inode, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	inode, _, err := fs.resolve(splitPath(cwd, p), true)
	return inode, err
}

// Lstat looks up p like Get but does not follow a trailing symlink.
func (fs *FS) Lstat(cwd, p string) (*Inode, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	inode, _, err := fs.resolve(splitPath(cwd, p), false)
	return inode, err
}

// List returns the directory entries of p in insertion order. Sorting, if
// wanted, is the caller's responsibility.
func (fs *FS) List(cwd, p string) ([]DirEntry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	inode, _, err := fs.resolve(splitPath(cwd, p), true)
	if err != nil {
		return nil, err
	}
	if inode.Kind != KindDirectory {
		return []DirEntry{inode.entry()}, nil
	}

	entries := make([]DirEntry, 0, len(inode.ChildOrder))
	for _, name := range inode.ChildOrder {
		entries = append(entries, inode.Children[name].entry())
	}
	return entries, nil
}

// splitParent resolves all but the final component of parts, returning the
// parent directory inode, its path, and the final component name.
func (fs *FS) splitParent(parts []string) (*Inode, string, string, error) {
	if len(parts) == 0 {
		return nil, "", "", newErr(ErrInvalidPath, "/")
	}
	name := parts[len(parts)-1]
	parent, parentPath, err := fs.resolve(parts[:len(parts)-1], true)
	if err != nil {
		return nil, "", "", err
	}
	if parent.Kind != KindDirectory {
		return nil, "", "", newErr(ErrNotDirectory, parentPath)
	}
	return parent, parentPath, name, nil
}

// CreateDirectory creates directory p (relative to cwd), failing if it
// already exists or its parent does not.
func (fs *FS) CreateDirectory(cwd, p, owner, group string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, parentPath, name, err := fs.splitParent(splitPath(cwd, p))
	if err != nil {
		return err
	}
	if _, exists := parent.Children[name]; exists {
		return newErr(ErrAlreadyExists, path.Join(parentPath, name))
	}
	parent.addChild(name, newDirectory(name, owner, group))
	return nil
}

// CreateFile creates or overwrites a regular file at p with content.
func (fs *FS) CreateFile(cwd, p, owner, group string, content []byte, mode uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, _, name, err := fs.splitParent(splitPath(cwd, p))
	if err != nil {
		return err
	}
	if existing, exists := parent.Children[name]; exists && existing.Kind == KindDirectory {
		return newErr(ErrIsDirectory, path.Join(cwd, p))
	}
	parent.addChild(name, newFile(name, owner, group, content, mode))
	return nil
}

// CreateSymlink creates a symlink at p pointing at target. target is stored
// verbatim and resolved lazily on traversal.
func (fs *FS) CreateSymlink(cwd, p, owner, group, target string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, parentPath, name, err := fs.splitParent(splitPath(cwd, p))
	if err != nil {
		return err
	}
	if _, exists := parent.Children[name]; exists {
		return newErr(ErrAlreadyExists, path.Join(parentPath, name))
	}
	parent.addChild(name, newSymlink(name, owner, group, target))
	return nil
}

// Remove deletes the entry at p from its parent directory.
func (fs *FS) Remove(cwd, p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, parentPath, name, err := fs.splitParent(splitPath(cwd, p))
	if err != nil {
		return err
	}
	if _, exists := parent.Children[name]; !exists {
		return newErr(ErrNotFound, path.Join(parentPath, name))
	}
	parent.removeChild(name)
	return nil
}

// ReadFile returns the content of the regular file at p.
func (fs *FS) ReadFile(cwd, p string) ([]byte, error) {
	inode, err := fs.Get(cwd, p)
	if err != nil {
		return nil, err
	}
	if inode.Kind == KindDirectory {
		return nil, newErr(ErrIsDirectory, fs.Resolve(cwd, p))
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]byte, len(inode.Content))
	copy(out, inode.Content)
	return out, nil
}
