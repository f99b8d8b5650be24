package lyrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("unknown lyrics format")
	ErrNoUsableLines = errors.New("no usable lines in payload")
)

// Parse converts a raw provider payload with a declared format tag into a
// Document. On failure no partial document is returned. A parse failure is
// equivalent to a provider miss for the caller.
func Parse(format Format, raw string, provider string) (*Document, error) {
	var lines []Line
	var err error

	switch format {
	case FormatLRC:
		lines, err = parseLRC(raw)
	case FormatRichsync:
		lines, err = parseRichsync(raw)
	case FormatLineSync:
		lines, err = parseLineSync(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoUsableLines
	}

	return &Document{
		Lines:    sanitizeLines(lines),
		Format:   format,
		Provider: provider,
	}, nil
}

// parseLRC parses the plain-text line-timestamp format. A text may be
// prefixed by several timestamp brackets; each becomes its own line.
// Lines without a valid timestamp are skipped, not fatal.
func parseLRC(raw string) ([]Line, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoUsableLines
	}

	var out []Line
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		stamps, text := splitTimestamps(trimmed)
		if len(stamps) == 0 || text == "" {
			continue
		}

		for _, ts := range stamps {
			seconds, err := parseClockTime(ts)
			if err != nil {
				continue
			}
			out = append(out, Line{Start: seconds, Text: text})
		}
	}

	return out, nil
}

// splitTimestamps strips every leading [..] bracket off an LRC line and
// returns the bracket contents plus the remaining text.
func splitTimestamps(line string) ([]string, string) {
	var stamps []string
	rest := line
	for strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end <= 1 {
			break
		}
		inner := rest[1:end]
		if !looksLikeClockTime(inner) {
			// metadata tag like [ar:...] or [ti:...], skip the whole line
			return nil, ""
		}
		stamps = append(stamps, inner)
		rest = strings.TrimSpace(rest[end+1:])
	}
	return stamps, rest
}

func looksLikeClockTime(s string) bool {
	if s == "" {
		return false
	}
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return false
	}
	_, err := strconv.Atoi(s[:colon])
	return err == nil
}

// parseClockTime converts "mm:ss.xx" (optionally "hh:mm:ss.xx") into
// seconds.
func parseClockTime(raw string) (float64, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time format: %s", raw)
	}

	var total float64
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse time component %q: %w", part, err)
		}
		total = total*60 + value
	}

	if total < 0 {
		return 0, errors.New("negative time not allowed")
	}
	return total, nil
}

// SerializeLRC renders a document back into line-timestamp text. Word
// timings are not representable in LRC and are dropped.
func SerializeLRC(doc *Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	for i := range doc.Lines {
		l := &doc.Lines[i]
		ms := int64(l.Start*1000 + 0.5)
		fmt.Fprintf(&b, "[%02d:%02d.%02d]%s\n", ms/60000, (ms%60000)/1000, ms%1000/10, l.Text)
	}
	return b.String()
}

// richsyncLine mirrors the word-synchronized JSON shape: line start (ts),
// line end (te), and either an explicit words array or a character stream
// (l) with per-character offsets from ts.
type richsyncLine struct {
	Start float64 `json:"ts"`
	End   float64 `json:"te"`
	Text  string  `json:"x"`
	Words []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"words"`
	Chars []struct {
		Char   string  `json:"c"`
		Offset float64 `json:"o"`
	} `json:"l"`
}

func parseRichsync(raw string) ([]Line, error) {
	var entries []richsyncLine
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode richsync json: %w", err)
	}

	var out []Line
	for _, entry := range entries {
		words := entry.wordTimings()
		if len(words) == 0 {
			// no word data in this entry, keep it as a plain line
			if strings.TrimSpace(entry.Text) == "" {
				continue
			}
			out = append(out, Line{Start: entry.Start, Text: entry.Text})
			continue
		}

		clampWordEnds(words)

		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.Text
		}

		out = append(out, Line{
			Start: entry.Start,
			Text:  strings.Join(texts, " "),
			Words: words,
		})
	}

	return out, nil
}

// wordTimings extracts per-word timings from either richsync shape.
func (r *richsyncLine) wordTimings() []Word {
	if len(r.Words) > 0 {
		words := make([]Word, 0, len(r.Words))
		for _, w := range r.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			end := w.End
			if end < w.Start {
				end = w.Start
			}
			words = append(words, Word{Start: w.Start, End: end, Text: text})
		}
		return words
	}

	if len(r.Chars) == 0 {
		return nil
	}

	// character stream: group into words on whitespace, offsets are
	// relative to the line start
	var words []Word
	var current strings.Builder
	var currentStart float64
	started := false

	flush := func(end float64) {
		if !started || current.Len() == 0 {
			return
		}
		words = append(words, Word{
			Start: r.Start + currentStart,
			End:   r.Start + end,
			Text:  current.String(),
		})
		current.Reset()
		started = false
	}

	lastOffset := 0.0
	for _, ch := range r.Chars {
		if strings.TrimSpace(ch.Char) == "" {
			flush(ch.Offset)
			continue
		}
		if !started {
			currentStart = ch.Offset
			started = true
		}
		current.WriteString(ch.Char)
		lastOffset = ch.Offset
	}
	if started {
		end := r.End - r.Start
		if end < lastOffset {
			end = lastOffset
		}
		flush(end)
	}

	return words
}

// clampWordEnds enforces that a word never extends past the next word's
// start.
func clampWordEnds(words []Word) {
	for i := 0; i < len(words)-1; i++ {
		if words[i].End > words[i+1].Start {
			words[i].End = words[i+1].Start
		}
	}
}

// lineSyncEntry is one (start, text) pair of the line-synchronized JSON
// format. The start time arrives either as a bare number or wrapped in a
// {"total": seconds} object depending on the provider.
type lineSyncEntry struct {
	Time lineSyncTime `json:"time"`
	Text string       `json:"text"`
}

type lineSyncTime struct {
	Seconds float64
}

func (t *lineSyncTime) UnmarshalJSON(data []byte) error {
	var direct float64
	if err := json.Unmarshal(data, &direct); err == nil {
		t.Seconds = direct
		return nil
	}
	var wrapped struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	t.Seconds = wrapped.Total
	return nil
}

func parseLineSync(raw string) ([]Line, error) {
	var entries []lineSyncEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode line-sync json: %w", err)
	}

	var out []Line
	for _, entry := range entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		out = append(out, Line{Start: entry.Time.Seconds, Text: text})
	}

	return out, nil
}
