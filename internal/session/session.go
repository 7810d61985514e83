// SPDX-License-Identifier: MPL-2.0

package session

import (
	"fmt"

	"github.com/charmbracelet/log"

	"molt-cli/internal/catalog"
	"molt-cli/internal/history"
	"molt-cli/internal/hostout"
	"molt-cli/internal/invoke"
	"molt-cli/internal/modimage"
)

// State is the lifecycle phase of one command session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateCataloging
	StateAwaitingSelection
	StateInvoking
	StateUnloading
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateCataloging:
		return "cataloging"
	case StateAwaitingSelection:
		return "awaiting-selection"
	case StateInvoking:
		return "invoking"
	case StateUnloading:
		return "unloading"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type (
	// Handle is one loaded module inside its own reclaimable context.
	// After RequestUnload no other method may be trusted.
	Handle interface {
		Image() *modimage.Image
		Manifest() *modimage.Manifest
		Thunk(symbol string) (invoke.Thunk, error)
		RequestUnload()
	}

	// Loader produces a Handle from a module path, isolated from any
	// previously loaded generation of the same file.
	Loader interface {
		Load(path string) (Handle, error)
	}

	// Picker presents the catalog and returns the chosen entry. A false
	// second return means the operator cancelled; that is not an error.
	Picker interface {
		Pick(cat catalog.Catalog) (catalog.Descriptor, bool, error)
	}

	// Unloader tears a handle down at session end. It must not panic and
	// must tolerate being handed a handle whose invocation just failed.
	Unloader interface {
		Teardown(h Handle)
	}

	// Recorder persists a successful dispatch for later repeat.
	Recorder interface {
		Record(rec history.Record) error
	}

	// Session drives one load, pick, invoke, unload cycle. It is not safe
	// for concurrent use; each CLI invocation owns exactly one session.
	Session struct {
		loader   Loader
		picker   Picker
		unloader Unloader
		recorder Recorder
		out      hostout.Channel
		logger   *log.Logger
		state    State
	}
)

// New assembles a session from its collaborators.
func New(loader Loader, picker Picker, unloader Unloader, recorder Recorder, out hostout.Channel, logger *log.Logger) *Session {
	return &Session{
		loader:   loader,
		picker:   picker,
		unloader: unloader,
		recorder: recorder,
		out:      out,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

func (s *Session) setState(next State) {
	s.logger.Debug("session transition", "from", s.state, "to", next)
	s.state = next
}

// Run executes one interactive session against the module at path: load it
// into a fresh context, build the catalog, let the operator pick, invoke,
// and unload. The unload runs once the load has succeeded, no matter how
// the rest of the session ends. An empty catalog and a cancelled selection
// both end the session normally.
func (s *Session) Run(path string) error {
	return s.run(path, func(cat catalog.Catalog) (catalog.Descriptor, bool, error) {
		return s.picker.Pick(cat)
	})
}

// RunLast repeats a previously recorded invocation without prompting. The
// module is loaded fresh, so a rebuild since the recording is picked up;
// if the recorded member no longer exists in the rebuilt module, that is
// a dispatch failure, not a crash.
func (s *Session) RunLast(rec history.Record) error {
	return s.run(rec.ModulePath, func(cat catalog.Catalog) (catalog.Descriptor, bool, error) {
		desc, ok := cat.Find(rec.FullyQualifiedTypeName, rec.MemberName)
		if !ok {
			return catalog.Descriptor{}, false, &invoke.DispatchError{
				TypeName:   rec.FullyQualifiedTypeName,
				MemberName: rec.MemberName,
				Cause:      fmt.Errorf("recorded command no longer present in %s", rec.ModulePath),
			}
		}
		return desc, true, nil
	})
}

// run is the shared session body; choose abstracts over interactive
// selection and history replay.
func (s *Session) run(path string, choose func(catalog.Catalog) (catalog.Descriptor, bool, error)) error {
	s.setState(StateLoading)
	defer s.setState(StateIdle)

	h, err := s.loader.Load(path)
	if err != nil {
		return err
	}
	defer func() {
		s.setState(StateUnloading)
		s.unloader.Teardown(h)
	}()

	s.setState(StateCataloging)
	cat := catalog.FromManifest(h.Manifest())
	if len(cat) == 0 {
		s.out.Infof("no commands found in %s", path)
		return nil
	}

	s.setState(StateAwaitingSelection)
	desc, ok, err := choose(cat)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("selection cancelled", "module", path)
		return nil
	}

	s.setState(StateInvoking)
	s.logger.Info("invoking command", "command", desc.CommandName, "type", desc.FullyQualifiedTypeName, "member", desc.MemberName)
	if err := invoke.Run(h, desc); err != nil {
		return err
	}

	rec := history.Record{
		ModulePath:             h.Image().Path,
		FullyQualifiedTypeName: desc.FullyQualifiedTypeName,
		MemberName:             desc.MemberName,
	}
	if err := s.recorder.Record(rec); err != nil {
		// A broken history file must not fail an invocation that worked.
		s.logger.Warn("could not record invocation", "err", err)
	}

	s.out.Infof("command %s completed", desc.CommandName)
	return nil
}
