package tui

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

const (
	jobKindAnalyze jobKind = "analyze"
	jobKindSave    jobKind = "save"
)

type jobStatus string

const (
	jobRunning   jobStatus = "running"
	jobSucceeded jobStatus = "succeeded"
	jobFailed    jobStatus = "failed"
	jobCancelled jobStatus = "cancelled"
)

// jobSnapshot is what the model learns about a job when it starts and ends.
type jobSnapshot struct {
	ID       string
	Kind     jobKind
	Status   jobStatus
	Started  time.Time
	Elapsed  time.Duration
	ErrorMsg string
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries the runner's message back into Update.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs work off the update loop. At most one job per kind is live:
// starting a second one cancels the first.
type jobBus struct {
	mu      sync.Mutex
	seq     int
	running map[jobKind]context.CancelFunc
}

func newJobBus() *jobBus {
	return &jobBus{running: map[jobKind]context.CancelFunc{}}
}

func (b *jobBus) claim(ctx context.Context, kind jobKind) (string, context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cancel, ok := b.running[kind]; ok {
		cancel()
	}
	b.seq++
	jobCtx, cancel := context.WithCancel(ctx)
	b.running[kind] = cancel
	return fmt.Sprintf("%s-%d", kind, b.seq), jobCtx
}

func (b *jobBus) release(kind jobKind, ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// Only the job that still owns the slot clears it.
	if cancel, ok := b.running[kind]; ok && ctx.Err() == nil {
		cancel()
		delete(b.running, kind)
	}
}

// Start returns a command that reports the job as running and then
// delivers its result.
func (b *jobBus) Start(ctx context.Context, kind jobKind, runner jobRunner) tea.Cmd {
	id, jobCtx := b.claim(ctx, kind)
	started := time.Now()
	announce := func() tea.Msg {
		return jobSignalMsg{Snapshot: jobSnapshot{ID: id, Kind: kind, Status: jobRunning, Started: started}}
	}
	run := func() tea.Msg {
		payload, err := runner(jobCtx)
		snap := jobSnapshot{ID: id, Kind: kind, Status: jobSucceeded, Started: started, Elapsed: time.Since(started)}
		switch {
		case err != nil && jobCtx.Err() != nil:
			snap.Status = jobCancelled
			snap.ErrorMsg = err.Error()
		case err != nil:
			snap.Status = jobFailed
			snap.ErrorMsg = err.Error()
		}
		b.release(kind, jobCtx)
		log.Printf("[jobs] %s %s in %s", id, snap.Status, snap.Elapsed.Round(time.Millisecond))
		return jobResultEnvelope{Snapshot: snap, Payload: payload}
	}
	return tea.Sequence(announce, run)
}
