package session

import (
	"context"
	"fmt"

	"image-processor/internal/engine"
	"image-processor/internal/viewport"
)

// CommandKind enumerates the user commands a session accepts.
type CommandKind int

const (
	CmdFilter CommandKind = iota
	CmdForwardTransform
	CmdInverseTransform
	CmdCut
	CmdCopy
	CmdPaste
	CmdDeleteSelection
	CmdUndo
	CmdRedo
	CmdZoomIn
	CmdZoomOut
	CmdZoomReset
	CmdDeleteImage
	CmdReload
)

var commandNames = map[CommandKind]string{
	CmdFilter:           "Filter",
	CmdForwardTransform: "Forward Transform",
	CmdInverseTransform: "Inverse Transform",
	CmdCut:              "Cut",
	CmdCopy:             "Copy",
	CmdPaste:            "Paste",
	CmdDeleteSelection:  "Delete Selection",
	CmdUndo:             "Undo",
	CmdRedo:             "Redo",
	CmdZoomIn:           "Zoom In",
	CmdZoomOut:          "Zoom Out",
	CmdZoomReset:        "Reset Zoom",
	CmdDeleteImage:      "Delete Image",
	CmdReload:           "Reload",
}

// Command is a user action. Filter is only read for CmdFilter.
type Command struct {
	Kind   CommandKind
	Filter engine.Filter
}

// FilterCommand returns the command that applies f.
func FilterCommand(f engine.Filter) Command {
	return Command{Kind: CmdFilter, Filter: f}
}

func (c Command) String() string {
	if c.Kind == CmdFilter {
		return c.Filter.String()
	}
	if name, ok := commandNames[c.Kind]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c.Kind))
}

// CanExecute reports whether cmd would currently be accepted. It is meant
// for enabling menu items; Execute still checks every precondition.
func (s *Session) CanExecute(cmd Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	hasImage := s.current != nil
	switch cmd.Kind {
	case CmdFilter, CmdForwardTransform, CmdPaste:
		return hasImage && !s.busy
	case CmdInverseTransform:
		return hasImage && !s.busy && s.cache.HasResult()
	case CmdCut, CmdDeleteSelection:
		return hasImage && !s.busy && s.selection.Valid()
	case CmdCopy:
		return hasImage && s.selection.Valid()
	case CmdUndo:
		return !s.busy && s.history.CanUndo()
	case CmdRedo:
		return !s.busy && s.history.CanRedo()
	case CmdZoomIn:
		return s.zoom.Level() < viewport.MaxZoom
	case CmdZoomOut:
		return s.zoom.Level() > viewport.MinZoom
	case CmdZoomReset:
		return true
	case CmdDeleteImage:
		return hasImage && !s.busy
	case CmdReload:
		return s.path != "" && !s.busy
	}
	return false
}

// jobFor returns the history-recorded job behind cmd, if it has one.
func (s *Session) jobFor(cmd Command) (*job, bool) {
	switch cmd.Kind {
	case CmdFilter:
		return s.filterJob(cmd.Filter), true
	case CmdForwardTransform:
		return s.forwardJob(), true
	case CmdInverseTransform:
		return s.inverseJob(), true
	case CmdCut:
		return s.cutJob(), true
	case CmdPaste:
		return s.pasteJob(), true
	case CmdDeleteSelection:
		return s.deleteJob(), true
	}
	return nil, false
}

// Execute runs cmd synchronously.
func (s *Session) Execute(ctx context.Context, cmd Command) error {
	if j, ok := s.jobFor(cmd); ok {
		return s.execute(ctx, j)
	}
	switch cmd.Kind {
	case CmdCopy:
		return s.Copy()
	case CmdUndo:
		return s.Undo()
	case CmdRedo:
		return s.Redo()
	case CmdZoomIn:
		s.ZoomIn()
	case CmdZoomOut:
		s.ZoomOut()
	case CmdZoomReset:
		s.ResetZoom()
	case CmdDeleteImage:
		return s.DeleteImage()
	case CmdReload:
		return s.Reload()
	default:
		return fmt.Errorf("unknown command %v", cmd)
	}
	return nil
}

// Dispatch runs cmd without blocking on the engine. A command rejected up
// front returns its error and done is not called. Otherwise done receives
// the outcome once, through the session scheduler.
func (s *Session) Dispatch(ctx context.Context, cmd Command, done func(error)) error {
	if j, ok := s.jobFor(cmd); ok {
		return s.dispatch(ctx, j, done)
	}
	if err := s.Execute(ctx, cmd); err != nil {
		return err
	}
	if done != nil {
		s.scheduler.Post(func() { done(nil) })
	}
	return nil
}
