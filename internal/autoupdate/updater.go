package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/egoavara/brat/internal/i18n"
)

// Spinner characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner represents a terminal spinner
type Spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
}

// NewSpinner creates a new spinner with a message
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r  %s %s ", spinnerFrames[i%len(spinnerFrames)], s.message)
			s.mu.Unlock()

			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and shows the result
func (s *Spinner) Stop(success bool) {
	close(s.stop)
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		fmt.Fprintf(s.out, "\r  ✓ %s\n", s.message)
	} else {
		fmt.Fprintf(s.out, "\r  ✗ %s\n", s.message)
	}
}

// Updater handles applying updates
type Updater struct {
	installer *Installer
	out       io.Writer
}

// UpdaterOption configures an Updater
type UpdaterOption func(*Updater)

// WithOutput sets where progress is printed
func WithOutput(w io.Writer) UpdaterOption {
	return func(u *Updater) {
		u.out = w
	}
}

// NewUpdater creates a new updater
func NewUpdater(installer *Installer, opts ...UpdaterOption) *Updater {
	u := &Updater{
		installer: installer,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ApplyUpdates applies every pending update from the check result.
// A failing item does not stop the batch; failures are joined into the
// returned error and the applied items are returned.
func (u *Updater) ApplyUpdates(ctx context.Context, result *CheckResult) ([]UpdateInfo, error) {
	if !result.HasAnyUpdate {
		return nil, nil
	}

	fmt.Fprintln(u.out, i18n.T("update.updating", nil))
	fmt.Fprintln(u.out)

	var applied []UpdateInfo
	var updateErrors []error

	for _, p := range result.Plugins {
		if !p.HasUpdate {
			continue
		}

		spinner := NewSpinner(u.out, fmt.Sprintf("%s %s", i18n.T("update.typePlugin", nil), p.Label()))
		spinner.Start()

		_, err := u.installer.UpdatePlugin(ctx, p.Repo)
		spinner.Stop(err == nil)

		if err != nil {
			updateErrors = append(updateErrors, err)
			continue
		}
		applied = append(applied, p)
	}

	for _, t := range result.Themes {
		if !t.HasUpdate {
			continue
		}

		spinner := NewSpinner(u.out, fmt.Sprintf("%s %s", i18n.T("update.typeTheme", nil), t.Label()))
		spinner.Start()

		_, err := u.installer.UpdateTheme(ctx, t.Repo)
		spinner.Stop(err == nil)

		if err != nil {
			updateErrors = append(updateErrors, err)
			continue
		}
		applied = append(applied, t)
	}

	fmt.Fprintln(u.out)

	if len(updateErrors) > 0 {
		fmt.Fprintln(u.out, i18n.T("update.partialSuccess", nil))
	} else {
		fmt.Fprintln(u.out, i18n.T("update.complete", nil))
	}

	return applied, errors.Join(updateErrors...)
}
