package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"image-processor/internal/engine"
	"image-processor/internal/session"
)

// Operation keys accepted by --op besides the filter keys.
const (
	opForward = "fft"
	opInverse = "ifft"
)

// parseOps maps --op values to session commands.
func parseOps(keys []string) ([]session.Command, error) {
	cmds := make([]session.Command, 0, len(keys))
	for _, key := range keys {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case opForward:
			cmds = append(cmds, session.Command{Kind: session.CmdForwardTransform})
		case opInverse:
			cmds = append(cmds, session.Command{Kind: session.CmdInverseTransform})
		default:
			f, err := engine.ParseFilter(key)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, session.FilterCommand(f))
		}
	}
	return cmds, nil
}

func opKeys() string {
	keys := make([]string, 0, len(engine.Filters())+2)
	for _, f := range engine.Filters() {
		keys = append(keys, f.Key())
	}
	return strings.Join(append(keys, opForward, opInverse), ", ")
}

func runOps(ctx context.Context, s *session.Session, cmds []session.Command) error {
	for _, c := range cmds {
		if err := s.Execute(ctx, c); err != nil {
			return fmt.Errorf("%v: %w", c, err)
		}
	}
	return nil
}

// printLog writes the operation log oldest first.
func printLog(w io.Writer, s *session.Session) {
	entries := s.Log().Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Fprintln(w, entries[i])
	}
}
