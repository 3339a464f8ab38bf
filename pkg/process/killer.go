// Package process finds and terminates browser processes left behind by
// Playwright.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	psprocess "github.com/shirou/gopsutil/v4/process"

	"github.com/entrhq/playwright-mcp/pkg/logging"
)

// target is the slice of a running process the killer needs.
type target interface {
	PID() int32
	NameWithContext(ctx context.Context) (string, error)
	ExeWithContext(ctx context.Context) (string, error)
	TerminateWithContext(ctx context.Context) error
}

type osProcess struct {
	*psprocess.Process
}

func (p osProcess) PID() int32 {
	return p.Pid
}

func listOSProcesses(ctx context.Context) ([]target, error) {
	procs, err := psprocess.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]target, 0, len(procs))
	for _, p := range procs {
		targets = append(targets, osProcess{p})
	}
	return targets, nil
}

// Killer terminates Chrome/Chromium processes launched from a Playwright
// browser install.
type Killer struct {
	logger *logging.Logger
	list   func(ctx context.Context) ([]target, error)
}

// NewKiller creates a Killer that inspects the processes of the host.
func NewKiller(logger *logging.Logger) *Killer {
	if logger == nil {
		logger = logging.NewWriterLogger("process", io.Discard)
	}
	return &Killer{logger: logger, list: listOSProcesses}
}

// IsPlaywrightBrowser reports whether a process looks like a Chrome build
// that Playwright downloaded: its name mentions chrome and its executable
// lives under a playwright directory.
func IsPlaywrightBrowser(name, exe string) bool {
	if name == "" || exe == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), "chrome") &&
		strings.Contains(strings.ToLower(exe), "playwright")
}

// KillPlaywrightBrowsers terminates every matching process and returns how
// many were signalled. Processes that vanish or cannot be inspected are
// skipped; a process that matches but refuses to terminate is logged and
// skipped as well.
func (k *Killer) KillPlaywrightBrowsers(ctx context.Context) (int, error) {
	procs, err := k.list(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}

	terminated := 0
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return terminated, err
		}

		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			continue
		}
		if !IsPlaywrightBrowser(name, exe) {
			continue
		}

		k.logger.Infof("Terminating process: %s (PID: %d, Path: %s)", name, p.PID(), exe)
		if err := p.TerminateWithContext(ctx); err != nil {
			if !errors.Is(err, psprocess.ErrorProcessNotRunning) {
				k.logger.Warnf("Could not terminate process %d: %v", p.PID(), err)
			}
			continue
		}
		terminated++
	}

	return terminated, nil
}
