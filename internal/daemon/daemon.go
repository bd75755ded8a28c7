// Package daemon records which process owns a background loop, so a second
// monitor or copy trader refuses to start against the same database.
package daemon

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"polyscout/internal/models"
	"polyscout/internal/repository"
)

// Daemon names.
const (
	NameMonitor   = "monitor"
	NameCopyTrade = "copytrade"
)

const staleAfter = 5 * time.Minute

// ErrAlreadyRunning is returned when a live owner holds the daemon slot.
var ErrAlreadyRunning = fmt.Errorf("daemon already running")

type Registrar struct {
	Repo   repository.Repository
	Logger *zap.Logger

	// Now is overridable in tests.
	Now func() time.Time
}

func (r *Registrar) now() time.Time {
	if r != nil && r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Acquire claims the daemon slot for this process. A recorded owner is
// displaced only when its process is gone or its heartbeat is stale.
func (r *Registrar) Acquire(ctx context.Context, name string) error {
	if r == nil || r.Repo == nil {
		return nil
	}
	existing, err := r.Repo.GetDaemonState(ctx, name)
	if err != nil {
		return err
	}
	now := r.now()
	if existing != nil && processAlive(existing.PID) {
		fresh := existing.LastHeartbeat != nil && now.Sub(*existing.LastHeartbeat) < staleAfter
		if fresh {
			return fmt.Errorf("%w: %s owned by pid %d", ErrAlreadyRunning, name, existing.PID)
		}
	}
	if existing != nil && r.Logger != nil {
		r.Logger.Info("displacing stale daemon owner",
			zap.String("daemon", name),
			zap.Int("pid", existing.PID))
	}
	return r.Repo.UpsertDaemonState(ctx, &models.DaemonState{
		DaemonName:    name,
		PID:           os.Getpid(),
		StartedAt:     now,
		LastHeartbeat: &now,
	})
}

// Release clears the slot. Called on shutdown regardless of how the loop
// ended.
func (r *Registrar) Release(ctx context.Context, name string) error {
	if r == nil || r.Repo == nil {
		return nil
	}
	return r.Repo.DeleteDaemonState(ctx, name)
}

// RunHeartbeat refreshes the heartbeat until the context ends.
func (r *Registrar) RunHeartbeat(ctx context.Context, name string, interval time.Duration) {
	if r == nil || r.Repo == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Repo.TouchDaemonHeartbeat(ctx, name, r.now()); err != nil && r.Logger != nil {
				r.Logger.Warn("daemon heartbeat failed", zap.String("daemon", name), zap.Error(err))
			}
		}
	}
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
