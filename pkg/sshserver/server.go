// Package sshserver implements the honeypot's SSH listener, per-connection
// session state machine, and SFTP subsystem.
package sshserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/sys/unix"

	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/pkg/config"
	"github.com/marmos91/glasshouse/pkg/filesystem"
	"github.com/marmos91/glasshouse/pkg/geolocation"
	"github.com/marmos91/glasshouse/pkg/metrics"
	"github.com/marmos91/glasshouse/pkg/reputation"
	"github.com/marmos91/glasshouse/pkg/shell"
	"github.com/marmos91/glasshouse/pkg/store"
)

// Supervisor binds every configured interface and spawns one session
// goroutine per accepted connection.
type Supervisor struct {
	cfg         *config.Config
	sshConfig   *ssh.ServerConfig
	fs          *filesystem.FS
	registry    *shell.Registry
	actor       *store.Actor
	reputation  *reputation.Client
	geolocation *geolocation.Client
	metrics     metrics.SessionMetrics

	listeners []net.Listener
	wg        sync.WaitGroup
}

// Deps bundles the already-constructed subsystems a Supervisor wires
// together, so NewSupervisor doesn't need a dozen positional parameters.
type Deps struct {
	FS          *filesystem.FS
	Registry    *shell.Registry
	Actor       *store.Actor
	Reputation  *reputation.Client
	Geolocation *geolocation.Client
	Metrics     metrics.SessionMetrics
}

// NewSupervisor loads host keys and builds the shared ssh.ServerConfig.
func NewSupervisor(cfg *config.Config, deps Deps) (*Supervisor, error) {
	signers, err := LoadHostKeys(cfg.KeyFolder)
	if err != nil {
		return nil, fmt.Errorf("load host keys: %w", err)
	}

	s := &Supervisor{
		cfg:         cfg,
		fs:          deps.FS,
		registry:    deps.Registry,
		actor:       deps.Actor,
		reputation:  deps.Reputation,
		geolocation: deps.Geolocation,
		metrics:     deps.Metrics,
	}

	s.sshConfig = &ssh.ServerConfig{
		ServerVersion:     cfg.ServerVersion,
		PasswordCallback:  s.passwordCallback,
		PublicKeyCallback: s.publicKeyCallback,
		BannerCallback:    s.bannerCallback,
	}
	for _, signer := range signers {
		s.sshConfig.AddHostKey(signer)
	}

	return s, nil
}

func (s *Supervisor) bannerCallback(ssh.ConnMetadata) string {
	return s.cfg.AuthenticationBanner
}

// Serve binds every configured interface and blocks until ctx is canceled,
// then stops accepting and waits for the in-flight session goroutines and
// acceptor goroutines to finish.
func (s *Supervisor) Serve(ctx context.Context) error {
	for _, addr := range s.cfg.Interfaces {
		ln, err := s.listen(addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		s.listeners = append(s.listeners, ln)
		logger.Info("ssh listener bound", "addr", addr)

		s.wg.Add(1)
		go s.accept(ctx, ln)
	}

	<-ctx.Done()

	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Supervisor) listen(addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if !s.cfg.DisableSoReuseAddr {
					sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				}
				if sockErr == nil && !s.cfg.DisableSoReusePort {
					sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.Listen(context.Background(), "tcp", addr)
}

func (s *Supervisor) accept(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Warn("accept failed", logger.Err(err))
				return
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

func (s *Supervisor) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remoteAddr := conn.RemoteAddr().String()
	metrics.RecordConnectionAccepted(s.metrics, conn.LocalAddr().String())
	start := time.Now()
	defer metrics.RecordConnectionClosed(s.metrics, conn.LocalAddr().String(), time.Since(start))

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, s.sshConfig)
	if err != nil {
		logger.Debug("ssh handshake failed", logger.RemoteIP(remoteAddr), logger.Err(err))
		return
	}
	defer sshConn.Close()

	go ssh.DiscardRequests(reqs)

	sess := newSession(s, sshConn, remoteAddr)
	sess.run(ctx, chans)
}
