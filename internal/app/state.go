// Package app wires an editing session to the saved settings and runs the
// loop that delivers asynchronous results.
package app

import (
	"context"
	"path/filepath"
	"sync"

	"image-processor/internal/clipboard"
	"image-processor/internal/engine"
	"image-processor/internal/history"
	imgutil "image-processor/internal/image"
	"image-processor/internal/logging"
	"image-processor/internal/session"
	"image-processor/ui/prefs"
)

// State holds the session of the running editor together with the
// preferences it was configured from.
type State struct {
	Session *session.Session

	mu       sync.Mutex
	prefs    *prefs.Prefs
	settings prefs.Settings
	queue    *session.Queue
}

// NewState creates the session for engine e. Saved settings that fail
// validation are replaced by the defaults; the remembered paths are kept.
func NewState(e engine.Engine, clip clipboard.Service, p *prefs.Prefs) *State {
	settings := prefs.ReadSettings(p)
	if err := settings.Validate(); err != nil {
		logging.Logger().Warn("saved settings rejected, using defaults", "err", err)
		d := prefs.DefaultSettings()
		d.LastImagePath, d.DefaultDir = settings.LastImagePath, settings.DefaultDir
		settings = d
	}

	st := &State{
		prefs:    p,
		settings: settings,
		queue:    session.NewQueue(),
	}
	st.Session = session.New(e,
		session.WithClipboard(clip),
		session.WithHistory(history.New(history.WithCapacity(settings.HistoryCapacity))),
		session.WithParams(settings.Params),
		session.WithScheduler(st.queue),
		session.WithLastPath(settings.LastImagePath),
		session.WithPathRecorder(st.recordPath),
	)
	return st
}

// Settings returns the settings in effect.
func (st *State) Settings() prefs.Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.settings
}

// ApplySettings validates s, hands the filter parameters to the session and
// saves everything. The history capacity takes effect on the next start.
func (st *State) ApplySettings(s prefs.Settings) error {
	if err := st.Session.SetParams(s.Params); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := prefs.WriteSettings(st.prefs, s); err != nil {
		return err
	}
	st.settings = s
	return st.prefs.Save()
}

// recordPath remembers the last loaded file and its directory.
func (st *State) recordPath(path string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.settings.LastImagePath = path
	st.settings.DefaultDir = filepath.Dir(path)
	if err := prefs.WriteSettings(st.prefs, st.settings); err != nil {
		logging.Logger().Warn("failed to record image path", "path", path, "err", err)
		return
	}
	if err := st.prefs.Save(); err != nil {
		logging.Logger().Warn("failed to save preferences", "path", st.prefs.Path(), "err", err)
	}
}

// RestoreLastImage loads the file remembered from the previous run. It
// returns false without error when there is none or it no longer exists.
func (st *State) RestoreLastImage() (bool, error) {
	path := st.Settings().LastImagePath
	if !imgutil.Exists(path) {
		return false, nil
	}
	if err := st.Session.LoadFile(path); err != nil {
		return false, err
	}
	return true, nil
}

// Queue returns the scheduler asynchronous session work is delivered to.
func (st *State) Queue() *session.Queue {
	return st.queue
}

// Run delivers queued continuations one at a time until ctx is done.
func (st *State) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-st.queue.Ready():
			st.queue.Drain()
		}
	}
}
