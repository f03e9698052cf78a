// Package server exposes the game over SSH. Every connection gets its own
// engine, so sessions share nothing but the save store.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	gossh "github.com/gliderlabs/ssh"
	"go.uber.org/zap"

	"github.com/nathoo/neoncore/engine"
	"github.com/nathoo/neoncore/shell"
)

const fullMessage = "Night City's packed tonight, choom. All slots are taken, try again later."

// EngineFactory builds the engine for one connection.
type EngineFactory func(io shell.IO, log *zap.Logger) (*engine.Engine, error)

type Config struct {
	Addr        string
	HostKeyPath string
	MaxSessions int // 0 = unlimited
	IdleTimeout time.Duration
}

type Server struct {
	cfg       Config
	newEngine EngineFactory
	log       *zap.Logger
	srv       *gossh.Server

	mu     sync.Mutex
	active int
	nextID atomic.Uint64
}

// New loads (or creates) the host key and prepares the SSH server.
func New(cfg Config, newEngine EngineFactory, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	signer, created, err := LoadOrCreateHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("generated host key", zap.String("path", cfg.HostKeyPath))
	}
	s := &Server{cfg: cfg, newEngine: newEngine, log: log}
	s.srv = &gossh.Server{
		Addr:        cfg.Addr,
		Handler:     s.handle,
		PtyCallback: func(gossh.Context, gossh.Pty) bool { return true },
		IdleTimeout: cfg.IdleTimeout,
	}
	s.srv.AddHostKey(signer)
	return s, nil
}

func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Addr))
	return s.serveErr(s.srv.ListenAndServe())
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info("listening", zap.String("addr", l.Addr().String()))
	return s.serveErr(s.srv.Serve(l))
}

func (s *Server) serveErr(err error) error {
	if errors.Is(err, gossh.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting and waits for open sessions until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Active returns the number of running sessions.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxSessions > 0 && s.active >= s.cfg.MaxSessions {
		return false
	}
	s.active++
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
}

func (s *Server) handle(sess gossh.Session) {
	log := s.log.With(
		zap.Uint64("session", s.nextID.Add(1)),
		zap.String("user", sess.User()),
		zap.String("remote", sess.RemoteAddr().String()),
	)
	if !s.acquire() {
		log.Warn("session rejected, server full", zap.Int("max", s.cfg.MaxSessions))
		fmt.Fprintln(sess, fullMessage)
		_ = sess.Exit(1)
		return
	}
	defer s.release()

	code := 0
	defer func() {
		if r := recover(); r != nil {
			log.Error("session panic", zap.Any("panic", r), zap.Stack("stack"))
			code = 2
		}
		_ = sess.Exit(code)
	}()

	tio := NewTerminal(sess)
	if pty, winCh, ok := sess.Pty(); ok {
		tio.SetSize(pty.Window.Width, pty.Window.Height)
		go func() {
			for w := range winCh {
				tio.SetSize(w.Width, w.Height)
			}
		}()
	}

	e, err := s.newEngine(tio, log)
	if err != nil {
		log.Error("engine setup failed", zap.Error(err))
		tio.Send("The game server glitched. Try again later.")
		code = 1
		return
	}

	log.Info("session started")
	res, err := e.Run(sess.Context())
	switch {
	case err == nil:
		log.Info("session ended", zap.String("reason", res.Reason))
	case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		log.Info("session disconnected")
	default:
		log.Error("session failed", zap.Error(err))
		code = 1
	}
}
