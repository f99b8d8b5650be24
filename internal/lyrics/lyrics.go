package lyrics

import "sort"

// Format identifies the wire format a raw lyrics payload arrived in. The
// tag is stored alongside the raw payload in the cache so the payload can
// be re-parsed on load.
type Format string

const (
	// FormatLRC is the plain-text line-timestamp format: [mm:ss.xx]text.
	FormatLRC Format = "lrc"
	// FormatRichsync is the word-synchronized JSON format with per-word
	// start/end times inside each line.
	FormatRichsync Format = "richsync"
	// FormatLineSync is the line-synchronized JSON format: ordered
	// (start, text) pairs without word data.
	FormatLineSync Format = "linesync"
)

// Valid reports whether f is one of the known format tags.
func (f Format) Valid() bool {
	switch f {
	case FormatLRC, FormatRichsync, FormatLineSync:
		return true
	}
	return false
}

// Word is a single timed word within a line. Start and End are absolute
// seconds; Text is a substring of the owning line's text.
type Word struct {
	Start float64
	End   float64
	Text  string
}

// Line is one displayed lyric line. Words is nil for line-level-only
// sources; when present it enables karaoke-style word highlighting.
type Line struct {
	Start float64
	Text  string
	Words []Word
}

// HasWords reports whether the line carries word-level timing.
func (l *Line) HasWords() bool {
	return l != nil && len(l.Words) > 0
}

// Document is the unified in-memory representation of synchronized lyrics.
// It is immutable once constructed: a re-fetch replaces the whole value.
type Document struct {
	Lines    []Line
	Format   Format
	Provider string
}

// WordSynced reports whether any line in the document has word timings,
// i.e. whether karaoke highlighting is possible for this track.
func (d *Document) WordSynced() bool {
	if d == nil {
		return false
	}
	for i := range d.Lines {
		if d.Lines[i].HasWords() {
			return true
		}
	}
	return false
}

// sortLines orders lines by non-decreasing start time. Provider payloads
// are not trusted to arrive sorted; the resolver's binary search depends
// on this invariant.
func sortLines(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Start < lines[j].Start
	})
}

// sanitizeLines drops lines with non-finite or negative-only garbage
// times, clamping small negatives to zero, then sorts.
func sanitizeLines(lines []Line) []Line {
	out := lines[:0]
	for _, l := range lines {
		if l.Start != l.Start { // NaN
			continue
		}
		if l.Start < 0 {
			l.Start = 0
		}
		out = append(out, l)
	}
	sortLines(out)
	return out
}
