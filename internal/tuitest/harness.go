// Package tuitest drives a terminal program inside a pseudo terminal so tests
// can script keystrokes and read back what was rendered.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth  = 120
	defaultHeight = 32
	pollInterval  = 50 * time.Millisecond
)

// Config describes the program to spawn.
type Config struct {
	Command        []string
	Dir            string
	Env            []string
	Width          int
	Height         int
	AllowInterrupt bool
}

// Recording is the raw terminal stream plus the frames parsed from it.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Session is a running program attached to a pseudo terminal.
type Session struct {
	cfg   Config
	cmd   *exec.Cmd
	ptmx  *os.File
	start time.Time

	mu  sync.Mutex
	out bytes.Buffer

	drained chan struct{}
	exited  chan error
}

// Start spawns the configured command. The caller must finish the session
// with Wait or Kill.
func Start(cfg Config) (*Session, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	s := &Session{
		cfg:     cfg,
		cmd:     cmd,
		ptmx:    ptmx,
		start:   time.Now(),
		drained: make(chan struct{}),
		exited:  make(chan error, 1),
	}
	go s.pump()
	go func() { s.exited <- cmd.Wait() }()
	return s, nil
}

func (s *Session) pump() {
	defer close(s.drained)
	responder := newTerminalResponder(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			responder.Process(chunk)
			s.mu.Lock()
			s.out.Write(chunk)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send writes raw input to the terminal.
func (s *Session) Send(input []byte) error {
	if _, err := s.ptmx.Write(input); err != nil {
		return fmt.Errorf("tuitest: write input: %w", err)
	}
	return nil
}

// Output returns everything rendered so far with escape sequences removed.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stripANSI(strings.ReplaceAll(s.out.String(), "\r", ""))
}

// WaitFor blocks until text has been rendered or ctx ends.
func (s *Session) WaitFor(ctx context.Context, text string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if strings.Contains(s.Output(), text) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("tuitest: %q never rendered: %w", text, ctx.Err())
		case err := <-s.exited:
			s.exited <- err
			if strings.Contains(s.Output(), text) {
				return nil
			}
			return fmt.Errorf("tuitest: program exited before %q rendered (err=%v)", text, err)
		case <-ticker.C:
		}
	}
}

// Wait blocks until the program exits and returns what it rendered.
func (s *Session) Wait(ctx context.Context) (*Recording, error) {
	select {
	case err := <-s.exited:
		if err != nil && !(s.cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")) {
			_ = s.ptmx.Close()
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		s.Kill()
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	_ = s.ptmx.Close()
	<-s.drained

	s.mu.Lock()
	raw := append([]byte(nil), s.out.Bytes()...)
	s.mu.Unlock()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(s.start)}, nil
}

// Kill stops the program and releases the terminal.
func (s *Session) Kill() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.ptmx.Close()
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	KeyEnter = []byte{'\r'}
	KeyCtrlC = []byte{3}
	KeyEsc   = []byte{27}
)
