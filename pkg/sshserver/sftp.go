package sshserver

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/pkg/filesystem"
	"github.com/marmos91/glasshouse/pkg/metrics"
	"github.com/marmos91/glasshouse/pkg/store"
)

// claimedMIMEByExtension maps a handful of extensions attackers commonly
// upload to the MIME type the filename itself claims, so it can be compared
// against what magic-byte sniffing actually detects.
var claimedMIMEByExtension = map[string]string{
	".exe": "application/x-executable",
	".com": "application/x-executable",
	".scr": "application/x-executable",
	".dll": "application/x-msdownload",
	".sh":  "application/x-shellscript",
	".bash": "application/x-shellscript",
	".py":  "text/x-python",
	".pl":  "text/x-perl",
	".php": "application/x-httpd-php",
	".txt": "text/plain",
	".zip": "application/zip",
	".tar": "application/x-tar",
	".gz":  "application/gzip",
}

func claimedMIME(path string) string {
	return claimedMIMEByExtension[strings.ToLower(filepath.Ext(path))]
}

// shannonEntropy computes the byte-distribution entropy of data, in bits
// per byte. Packed or encrypted payloads sit close to 8; plain text sits
// well below it.
func shannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	total := float64(len(data))
	var entropy float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// runSFTP hands the channel to a request server backed by sftpHandler, the
// in-memory filesystem's SFTP-facing adapter. It blocks until the channel
// closes.
func (sess *session) runSFTP(channel ssh.Channel) {
	h := &sftpHandler{sess: sess}
	server := sftp.NewRequestServer(channel, sftp.Handlers{
		FileGet:  h,
		FilePut:  h,
		FileCmd:  h,
		FileList: h,
	})
	defer server.Close()

	if err := server.Serve(); err != nil && err != io.EOF {
		logger.Debug("sftp session ended", logger.Err(err))
	}
}

// sftpHandler implements sftp.Handlers against the simulated filesystem
// tree. Every path arrives pre-resolved and absolute, so it always walks
// from cwd "/".
type sftpHandler struct {
	sess *session
}

func (h *sftpHandler) Fileread(r *sftp.Request) (io.ReaderAt, error) {
	size := int64(0)
	if inode, err := h.sess.sup.fs.Lstat("/", r.Filepath); err == nil {
		size = inode.Size
	}
	return &zeroReaderAt{size: size}, nil
}

// zeroReaderAt serves reads of an arbitrary uploaded or seeded file as
// zero bytes bounded by the inode's recorded size, which is enough for
// clients that merely probe file contents without real ones to steal.
type zeroReaderAt struct {
	size int64
}

func (z *zeroReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= z.size {
		return 0, io.EOF
	}
	n := len(p)
	if remaining := z.size - off; int64(n) > remaining {
		n = int(remaining)
	}
	for i := 0; i < n; i++ {
		p[i] = 0
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *sftpHandler) Filewrite(r *sftp.Request) (io.WriterAt, error) {
	flags := r.Pflags()
	if flags.Creat || flags.Write {
		if err := h.sess.sup.fs.CreateFile("/", r.Filepath, h.sess.username, h.sess.username, nil, 0644); err != nil {
			if code, ok := filesystem.Code(err); !ok || code != filesystem.ErrAlreadyExists {
				logger.Debug("sftp open for write failed", logger.Path(r.Filepath), logger.Err(err))
			}
		}
	}
	return &uploadWriter{sess: h.sess, path: r.Filepath}, nil
}

// uploadWriter accumulates every WriteAt into an in-memory buffer and
// commits it to the simulated filesystem, with SHA-256/MIME/entropy
// analysis, when the SFTP client closes the file.
type uploadWriter struct {
	sess *session
	path string

	mu  sync.Mutex
	buf []byte
}

func (w *uploadWriter) WriteAt(p []byte, off int64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	end := int(off) + len(p)
	if end > len(w.buf) {
		grown := make([]byte, end)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[off:end], p)
	return len(p), nil
}

func (w *uploadWriter) Close() error {
	w.mu.Lock()
	data := append([]byte(nil), w.buf...)
	w.mu.Unlock()

	sess := w.sess
	if err := sess.sup.fs.CreateFile("/", w.path, sess.username, sess.username, data, 0644); err != nil {
		logger.Debug("sftp commit failed", logger.Path(w.path), logger.Err(err))
	}

	claimed := claimedMIME(w.path)
	detected := mimetype.Detect(data).String()
	mismatch := claimed != "" && claimed != detected
	entropy := shannonEntropy(data)

	if mismatch {
		logger.Warn("sftp upload format mismatch", logger.Path(w.path), logger.ClaimedMIME(claimed), logger.DetectedMIME(detected))
	}
	if entropy > 7.5 {
		logger.Warn("sftp upload high entropy", logger.Path(w.path), logger.Entropy(entropy))
	}

	sess.sup.actor.Send(store.RecordFileUpload{
		ID:             uuid.NewString(),
		AuthID:         sess.authID,
		Timestamp:      time.Now(),
		Filename:       filepath.Base(w.path),
		Path:           w.path,
		Size:           int64(len(data)),
		SHA256:         sha256Hex(data),
		ClaimedMIME:    claimed,
		DetectedMIME:   detected,
		FormatMismatch: mismatch,
		Entropy:        entropy,
		Content:        data,
	})
	metrics.RecordFileUpload(sess.sup.metrics, int64(len(data)))
	return nil
}

func (h *sftpHandler) Filecmd(r *sftp.Request) error {
	switch r.Method {
	case "Mkdir":
		if err := h.sess.sup.fs.CreateDirectory("/", r.Filepath, h.sess.username, h.sess.username); err != nil {
			return err
		}
	case "Rmdir", "Remove":
		if err := h.sess.sup.fs.Remove("/", r.Filepath); err != nil {
			return err
		}
	case "Symlink":
		if err := h.sess.sup.fs.CreateSymlink("/", r.Target, h.sess.username, h.sess.username, r.Filepath); err != nil {
			return err
		}
	case "Rename", "Setstat":
		// Honeypot tree has no rename/chmod primitive; acknowledge anyway so
		// clients don't abort an otherwise successful upload session.
	}
	return nil
}

func (h *sftpHandler) Filelist(r *sftp.Request) (sftp.ListerAt, error) {
	switch r.Method {
	case "List":
		entries, err := h.sess.sup.fs.List("/", r.Filepath)
		if err != nil {
			return nil, err
		}
		infos := make([]os.FileInfo, 0, len(entries))
		for _, e := range entries {
			infos = append(infos, dirEntryFileInfo(e))
		}
		return &fileInfoList{entries: infos}, nil

	case "Stat", "Lstat":
		var (
			inode *filesystem.Inode
			err   error
		)
		if r.Method == "Lstat" {
			inode, err = h.sess.sup.fs.Lstat("/", r.Filepath)
		} else {
			inode, err = h.sess.sup.fs.Get("/", r.Filepath)
		}
		if err != nil {
			return nil, err
		}
		return &fileInfoList{entries: []os.FileInfo{inodeFileInfo(inode)}}, nil

	case "Readlink":
		inode, err := h.sess.sup.fs.Lstat("/", r.Filepath)
		if err != nil {
			return nil, err
		}
		return &fileInfoList{entries: []os.FileInfo{&syntheticFileInfo{name: inode.Target}}}, nil

	default:
		return nil, os.ErrInvalid
	}
}

// fileInfoList implements sftp.ListerAt over a fixed slice of os.FileInfo.
type fileInfoList struct {
	entries []os.FileInfo
}

func (l *fileInfoList) ListAt(dst []os.FileInfo, offset int64) (int, error) {
	if offset >= int64(len(l.entries)) {
		return 0, io.EOF
	}
	n := copy(dst, l.entries[offset:])
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

func dirEntryFileInfo(e filesystem.DirEntry) os.FileInfo {
	return &syntheticFileInfo{
		name:    e.Name,
		size:    e.Size,
		mode:    fileMode(e.Kind, e.Mode),
		modTime: e.ModTime,
	}
}

func inodeFileInfo(i *filesystem.Inode) os.FileInfo {
	return &syntheticFileInfo{
		name:    i.Name,
		size:    i.Size,
		mode:    fileMode(i.Kind, i.Mode),
		modTime: i.ModTime,
	}
}

func fileMode(kind filesystem.Kind, mode uint32) os.FileMode {
	m := os.FileMode(mode & 0777)
	switch kind {
	case filesystem.KindDirectory:
		m |= os.ModeDir
	case filesystem.KindSymlink:
		m |= os.ModeSymlink
	}
	return m
}

// syntheticFileInfo implements os.FileInfo for entries synthesized from the
// simulated tree, since Inode/DirEntry don't themselves satisfy the
// interface the sftp package expects.
type syntheticFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (f *syntheticFileInfo) Name() string       { return f.name }
func (f *syntheticFileInfo) Size() int64        { return f.size }
func (f *syntheticFileInfo) Mode() os.FileMode  { return f.mode }
func (f *syntheticFileInfo) ModTime() time.Time { return f.modTime }
func (f *syntheticFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *syntheticFileInfo) Sys() any           { return nil }
