package sshserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/marmos91/glasshouse/internal/cli/timeutil"
	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/pkg/metrics"
	"github.com/marmos91/glasshouse/pkg/shell"
	"github.com/marmos91/glasshouse/pkg/store"
)

// session is the per-connection state machine: Idle -> Authenticating ->
// Interactive -> Closing. Each connection runs on its own goroutine; within
// a connection, the request/data loop is single-threaded.
type session struct {
	sup        *Supervisor
	sshConn    *ssh.ServerConn
	remoteAddr string

	authID   string
	username string
	method   string
}

func newSession(sup *Supervisor, sshConn *ssh.ServerConn, remoteAddr string) *session {
	return &session{sup: sup, sshConn: sshConn, remoteAddr: remoteAddr}
}

// passwordCallback and publicKeyCallback both implement the authentication
// policy from SPEC_FULL.md 4.3: record unconditionally, then accept unless
// reject_all_auth is set or the CLI interface is disabled, sleeping a
// random 0-500ms beforehand to mimic a real server's timing.
func (s *Supervisor) passwordCallback(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
	password := string(pass)
	return s.recordAndDecide(c, "password", &password, nil)
}

func (s *Supervisor) publicKeyCallback(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
	fp := ssh.FingerprintSHA256(key)
	return s.recordAndDecide(c, "publickey", nil, &fp)
}

func (s *Supervisor) recordAndDecide(c ssh.ConnMetadata, method string, password, fingerprint *string) (*ssh.Permissions, error) {
	id := uuid.NewString()
	accept := !s.cfg.RejectAllAuth && !s.cfg.DisableCLIInterface
	remoteIP := stripPort(c.RemoteAddr().String())

	s.actor.Send(store.RecordAuth{
		ID:             id,
		Timestamp:      time.Now(),
		RemoteAddress:  remoteIP,
		Username:       c.User(),
		Method:         method,
		Password:       password,
		KeyFingerprint: fingerprint,
		Accepted:       accept,
	})
	metrics.RecordAuthAttempt(s.metrics, method, accept)
	s.enrichAsync(remoteIP)

	time.Sleep(randDuration(0, 500*time.Millisecond))

	if !accept {
		return nil, errors.New("access denied")
	}
	return &ssh.Permissions{
		Extensions: map[string]string{
			"auth_id":  id,
			"method":   method,
			"username": c.User(),
		},
	}, nil
}

// enrichAsync looks up reputation and geolocation for host, best-effort,
// logging the result. A rate-limited or failed lookup never affects the
// auth decision already made.
func (s *Supervisor) enrichAsync(hostport string) {
	host := stripPort(hostport)
	if host == "" || s.reputation == nil && s.geolocation == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.reputation != nil {
			if res, err := s.reputation.Check(ctx, host); err != nil {
				logger.Debug("reputation lookup failed", logger.IP(host), logger.Err(err))
			} else if res.AbuseConfidence > 0 {
				logger.Info("reputation lookup", logger.IP(host), logger.AbuseScore(res.AbuseConfidence), logger.Country(res.CountryCode))
			}
		}
		if s.geolocation != nil {
			if res, err := s.geolocation.Lookup(ctx, host); err != nil {
				logger.Debug("geolocation lookup failed", logger.IP(host), logger.Err(err))
			} else if res.Country != "" {
				logger.Info("geolocation lookup", logger.IP(host), logger.Country(res.Country))
			}
		}
	}()
}

func stripPort(hostport string) string {
	if idx := strings.LastIndex(hostport, ":"); idx > 0 {
		return hostport[:idx]
	}
	return hostport
}

func randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}

// run consumes newChannel requests for the lifetime of the connection.
func (sess *session) run(ctx context.Context, chans <-chan ssh.NewChannel) {
	ext := sess.sshConn.Permissions.Extensions
	sess.authID = ext["auth_id"]
	sess.method = ext["method"]
	sess.username = ext["username"]

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			logger.Debug("failed to accept channel", logger.Err(err))
			continue
		}
		go sess.handleChannel(ctx, channel, requests)
	}
}

func (sess *session) handleChannel(ctx context.Context, channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	home := fmt.Sprintf("/home/%s", sess.username)
	if err := sess.sup.fs.CreateDirectory("/", home, sess.username, sess.username); err != nil {
		logger.Debug("home directory already present", logger.Path(home))
	}

	for req := range requests {
		switch req.Type {
		case "pty-req", "env", "window-change":
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
		case "shell":
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
			sess.runShell(ctx, channel)
			return
		case "subsystem":
			name := parseSubsystemName(req.Payload)
			if name != "sftp" || !sess.sup.cfg.EnableSFTP {
				if req.WantReply {
					_ = req.Reply(false, nil)
				}
				continue
			}
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
			sess.runSFTP(channel)
			return
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func parseSubsystemName(payload []byte) string {
	if len(payload) < 4 {
		return ""
	}
	n := int(payload[0])<<24 | int(payload[1])<<16 | int(payload[2])<<8 | int(payload[3])
	if len(payload) < 4+n {
		return ""
	}
	return string(payload[4 : 4+n])
}

func (sess *session) runShell(ctx context.Context, channel ssh.Channel) {
	if sess.sup.cfg.DisableCLIInterface {
		_, _ = channel.Write([]byte("interactive shell disabled\r\n"))
		return
	}

	started := time.Now()
	shellCtx := shell.NewContext(sess.username, sess.sup.cfg.Hostname, sess.sup.fs, sess.authID)
	dispatcher := shell.NewDispatcher(sess.sup.registry)

	queueDepth := sess.sup.cfg.Tarpit.QueueDepth
	if queueDepth <= 0 {
		queueDepth = 1000
	}
	w := newTarpitWriter(channel, queueDepth, sess.sup.cfg.Tarpit.Enabled)
	defer func() {
		w.Close()
		<-w.Done()
		sess.recordSessionClose(started)
	}()

	if sess.sup.cfg.WelcomeMessage != "" {
		w.Write(motd(sess.sup.cfg.WelcomeMessage))
	}
	w.Write(shellCtx.Prompt())

	sess.lineEditor(ctx, channel, w, shellCtx, dispatcher)
}

func motd(welcome string) string {
	return welcome + "\r\n"
}

func (sess *session) recordSessionClose(started time.Time) {
	if sess.authID == "" {
		return
	}
	ended := time.Now()
	duration := ended.Sub(started)
	logger.Info("session closed",
		logger.Username(sess.username),
		logger.AuthID(sess.authID),
		logger.Uptime(timeutil.FormatUptime(duration.String())),
	)
	sess.sup.actor.Send(store.RecordSession{
		AuthID:     sess.authID,
		StartedAt:  started,
		EndedAt:    ended,
		DurationMs: duration.Milliseconds(),
	})
}

// lineEditor implements SPEC_FULL.md 4.3's data callback semantics: EOT
// disconnects, DEL/BS edits the buffer, ETX clears it, a commit byte
// dispatches the buffered command, anything else is appended and echoed.
func (sess *session) lineEditor(ctx context.Context, channel ssh.Channel, w *tarpitWriter, shellCtx *shell.Context, dispatcher *shell.Dispatcher) {
	idleTimeout := sess.sup.cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Second
	}
	idleTimer := time.AfterFunc(idleTimeout, func() { _ = channel.Close() })
	defer idleTimer.Stop()

	var buf []byte
	var utfBuf []byte
	read := make([]byte, 4096)

	for {
		n, err := channel.Read(read)
		if err != nil {
			return
		}
		idleTimer.Reset(idleTimeout)

		for _, b := range read[:n] {
			switch {
			case b == 0x04:
				w.Write("\r\nlogout\r\nConnection to host closed.\r\n")
				return

			case b == 0x7f || b == 0x08:
				if len(buf) == 0 {
					w.Write("\a")
				} else {
					buf = buf[:len(buf)-1]
					w.Write("\b \b")
				}

			case b == 0x03:
				buf = buf[:0]
				w.Write("\r\n" + shellCtx.Prompt())

			case b == '\n' || b == '\r':
				line := strings.TrimSpace(string(buf))
				buf = buf[:0]

				if line != "" {
					sess.sup.actor.Send(store.RecordCommand{
						ID:        uuid.NewString(),
						AuthID:    sess.authID,
						Timestamp: time.Now(),
						Text:      line,
					})
					metrics.RecordCommand(sess.sup.metrics, firstWord(line))
				}

				if shell.IsDisconnectCommand(firstWord(line)) {
					w.Write("\r\nlogout\r\nConnection to host closed.\r\n")
					return
				}

				output := dispatcher.Execute(line, shellCtx)
				w.Write("\r\n" + output + shellCtx.Prompt())

			default:
				// Buffer raw bytes until they form a complete UTF-8 rune
				// before echoing; a lone continuation byte or an invalid
				// sequence is dropped rather than mis-echoed.
				utfBuf = append(utfBuf, b)
				for len(utfBuf) > 0 {
					if !utf8.FullRune(utfBuf) && len(utfBuf) < utf8.UTFMax {
						break
					}
					r, size := utf8.DecodeRune(utfBuf)
					if r == utf8.RuneError && size <= 1 {
						utfBuf = utfBuf[1:]
						continue
					}
					buf = append(buf, utfBuf[:size]...)
					w.Write(string(r))
					utfBuf = utfBuf[size:]
				}
			}
		}
	}
}

func firstWord(line string) string {
	line = strings.TrimSpace(line)
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		return line[:idx]
	}
	return line
}

// tarpitWriter serializes outbound writes through a bounded channel, fed by
// a dedicated goroutine, so the session's inbound read loop is never
// blocked by its own throttling. When tarpit mode is enabled every outbound
// byte is preceded by a random 10-700ms sleep.
type tarpitWriter struct {
	channel ssh.Channel
	queue   chan []byte
	tarpit  bool
	done    chan struct{}
}

func newTarpitWriter(channel ssh.Channel, queueDepth int, tarpit bool) *tarpitWriter {
	w := &tarpitWriter{
		channel: channel,
		queue:   make(chan []byte, queueDepth),
		tarpit:  tarpit,
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *tarpitWriter) run() {
	defer close(w.done)
	for data := range w.queue {
		if w.tarpit {
			for _, b := range data {
				time.Sleep(randDuration(10*time.Millisecond, 700*time.Millisecond))
				if _, err := w.channel.Write([]byte{b}); err != nil {
					return
				}
			}
			continue
		}
		if _, err := w.channel.Write(data); err != nil {
			return
		}
	}
}

// Write enqueues s for output, dropping it if the queue is full: the
// honeypot would rather lose decorative bytes than buffer megabytes or
// stall the session.
func (w *tarpitWriter) Write(s string) {
	select {
	case w.queue <- []byte(s):
	default:
	}
}

func (w *tarpitWriter) Close() {
	close(w.queue)
}

func (w *tarpitWriter) Done() <-chan struct{} {
	return w.done
}

// sha256Hex is a small helper shared with the SFTP upload analyzer.
func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
