// Package pipe prints the active lyric line to a writer, one line per
// change. Meant for scripts and status bars instead of the full TUI.
package pipe

import (
	"context"
	"fmt"
	"io"

	"verso.dev/verso/internal/engine"
)

// Run consumes engine snapshots until the context ends or the channel
// closes. Each time the active line changes, its text is written
// followed by a newline; leaving lyrics (or the track ending) writes an
// empty line so consumers can clear their display.
func Run(ctx context.Context, snapshots <-chan engine.Snapshot, w io.Writer) error {
	lastKey := ""
	lastLine := -1
	printed := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}

			key := ""
			if snap.Track != nil {
				key = snap.Track.Key()
			}
			if key != lastKey {
				lastKey = key
				lastLine = -1
			}

			line := snap.Highlight.Line
			if line == lastLine {
				continue
			}
			lastLine = line

			if line < 0 || snap.Doc == nil || line >= len(snap.Doc.Lines) {
				if printed {
					if _, err := fmt.Fprintln(w); err != nil {
						return err
					}
					printed = false
				}
				continue
			}

			if _, err := fmt.Fprintln(w, snap.Doc.Lines[line].Text); err != nil {
				return err
			}
			printed = true
		}
	}
}
