package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/okarpov/pack-forge/internal/logger"
)

// DefaultMarkerLifetime is the period after which a run marker is treated
// as stale and recovered.
const DefaultMarkerLifetime = 30 * time.Minute

// errRunInProgress indicates another run owns the same marker right now.
var errRunInProgress = errors.New("another run is already in progress")

// RunGuard serializes runs sharing one key through a marker file. A fresh
// marker blocks the new run; a stale one triggers process cleanup before
// the marker is taken over.
type RunGuard struct {
	// markerPath is the marker file location, typically inside the pack root.
	markerPath string
	// processName is the executable name to terminate when the marker is stale.
	processName string
	// lifetime is how long a marker stays fresh.
	lifetime time.Duration
}

// NewRunGuard creates a guard for the provided marker path. processName is
// the executable whose stale instances may be terminated during recovery.
func NewRunGuard(markerPath, processName string, lifetime time.Duration) *RunGuard {
	if lifetime <= 0 {
		lifetime = DefaultMarkerLifetime
	}

	return &RunGuard{
		markerPath:  markerPath,
		processName: processName,
		lifetime:    lifetime,
	}
}

// Acquire takes ownership of the marker or fails when a fresh marker
// exists. The returned release function removes the marker and must be
// called when the run completes or fails.
func (g *RunGuard) Acquire(ctx context.Context) (func(), error) {
	if g.isRunActive(ctx) {
		return nil, errRunInProgress
	}

	if err := os.MkdirAll(filepath.Dir(g.markerPath), 0o755); err != nil {
		return nil, err
	}

	marker, err := os.Create(g.markerPath)
	if err != nil {
		return nil, err
	}

	if err = marker.Close(); err != nil {
		return nil, err
	}

	release := func() {
		if err := os.Remove(g.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Unable to remove run marker", "path", g.markerPath, "error", err)
		}
	}

	return release, nil
}

// isRunActive checks presence of the marker file and attempts recovery
// when it looks stale.
func (g *RunGuard) isRunActive(ctx context.Context) bool {
	fileInfo, err := os.Stat(g.markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= g.lifetime {
			return true
		}

		logger.InfoKV(ctx, "Run marker is stale, attempting cleanup", "path", g.markerPath)

		if err = terminateProcessByName(g.processName); err != nil {
			return true
		}

		if err = os.Remove(g.markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.WarnKV(ctx, "Unable to read run marker", "path", g.markerPath, "error", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided
// executable name, skipping the current process.
func terminateProcessByName(processName string) error {
	if processName == "" {
		return nil
	}

	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
