package lyrics

import (
	"errors"
	"math"
	"testing"
)

func TestParseLRC(t *testing.T) {
	raw := "[00:30.00]third line\n" +
		"not a lyric line\n" +
		"[00:10.50]first line\n" +
		"[ar:Some Artist]\n" +
		"[00:20.25]second line\n"

	doc, err := Parse(FormatLRC, raw, "lrclib")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []struct {
		start float64
		text  string
	}{
		{10.5, "first line"},
		{20.25, "second line"},
		{30.0, "third line"},
	}

	if len(doc.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(doc.Lines), len(want))
	}
	for i, w := range want {
		if doc.Lines[i].Start != w.start || doc.Lines[i].Text != w.text {
			t.Errorf("line %d = (%v, %q), want (%v, %q)", i, doc.Lines[i].Start, doc.Lines[i].Text, w.start, w.text)
		}
	}
	if doc.Provider != "lrclib" || doc.Format != FormatLRC {
		t.Errorf("doc tags = (%q, %q)", doc.Provider, doc.Format)
	}
}

func TestParseLRCMultipleTimestamps(t *testing.T) {
	raw := "[00:05.00][00:25.00]la la la\n[00:15.00]middle\n"

	doc, err := Parse(FormatLRC, raw, "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(doc.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(doc.Lines))
	}
	if doc.Lines[0].Text != "la la la" || doc.Lines[2].Text != "la la la" {
		t.Errorf("repeated text should appear at both timestamps, got %q and %q", doc.Lines[0].Text, doc.Lines[2].Text)
	}
	if doc.Lines[1].Text != "middle" {
		t.Errorf("middle line out of order: %q", doc.Lines[1].Text)
	}
}

func TestParseLRCNoUsableLines(t *testing.T) {
	for _, raw := range []string{"", "   \n \n", "no timestamps at all\nstill none", "[ar:tag only]"} {
		_, err := Parse(FormatLRC, raw, "test")
		if !errors.Is(err, ErrNoUsableLines) {
			t.Errorf("Parse(%q) error = %v, want ErrNoUsableLines", raw, err)
		}
	}
}

func TestLRCRoundTrip(t *testing.T) {
	raw := "[00:42.10]out of order comes last\n[00:01.00]first\n[00:10.99]second\n"

	doc, err := Parse(FormatLRC, raw, "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	again, err := Parse(FormatLRC, SerializeLRC(doc), "test")
	if err != nil {
		t.Fatalf("re-parse error = %v", err)
	}

	if len(again.Lines) != len(doc.Lines) {
		t.Fatalf("round trip changed line count: %d != %d", len(again.Lines), len(doc.Lines))
	}
	for i := range doc.Lines {
		if again.Lines[i].Text != doc.Lines[i].Text {
			t.Errorf("line %d text changed: %q != %q", i, again.Lines[i].Text, doc.Lines[i].Text)
		}
		if math.Abs(again.Lines[i].Start-doc.Lines[i].Start) > 0.011 {
			t.Errorf("line %d time drifted: %v != %v", i, again.Lines[i].Start, doc.Lines[i].Start)
		}
	}
}

func TestParseRichsyncWords(t *testing.T) {
	raw := `[
		{"ts": 1.0, "te": 3.0, "words": [
			{"start": 1.0, "end": 2.5, "text": "hello"},
			{"start": 2.0, "end": 3.0, "text": "world"}
		]},
		{"ts": 4.0, "te": 5.0, "x": "no words here"}
	]`

	doc, err := Parse(FormatRichsync, raw, "musixmatch")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}

	first := doc.Lines[0]
	if first.Text != "hello world" {
		t.Errorf("line text = %q, want words joined by single space", first.Text)
	}
	if len(first.Words) != 2 {
		t.Fatalf("got %d words, want 2", len(first.Words))
	}
	// first word's end must be clamped to the second word's start
	if first.Words[0].End != 2.0 {
		t.Errorf("word end not clamped: got %v, want 2.0", first.Words[0].End)
	}

	if doc.Lines[1].HasWords() {
		t.Error("second line should have no word timings")
	}
	if !doc.WordSynced() {
		t.Error("document with any timed words should report WordSynced")
	}
}

func TestParseRichsyncCharStream(t *testing.T) {
	raw := `[
		{"ts": 10.0, "te": 12.0, "x": "ab cd", "l": [
			{"c": "a", "o": 0.0},
			{"c": "b", "o": 0.2},
			{"c": " ", "o": 0.5},
			{"c": "c", "o": 0.8},
			{"c": "d", "o": 1.1}
		]}
	]`

	doc, err := Parse(FormatRichsync, raw, "musixmatch")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	words := doc.Lines[0].Words
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0].Text != "ab" || words[1].Text != "cd" {
		t.Errorf("words = %q, %q", words[0].Text, words[1].Text)
	}
	if words[0].Start != 10.0 || words[0].End != 10.5 {
		t.Errorf("first word timing = (%v, %v), want (10, 10.5)", words[0].Start, words[0].End)
	}
	if words[1].Start != 10.8 {
		t.Errorf("second word start = %v, want 10.8", words[1].Start)
	}
}

func TestParseLineSync(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"wrapped time", `[{"time": {"total": 5.5}, "text": "one"}, {"time": {"total": 9.0}, "text": "two"}]`},
		{"bare time", `[{"time": 5.5, "text": "one"}, {"time": 9.0, "text": "two"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(FormatLineSync, tt.raw, "musixmatch")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(doc.Lines) != 2 {
				t.Fatalf("got %d lines, want 2", len(doc.Lines))
			}
			if doc.Lines[0].Start != 5.5 || doc.Lines[0].Text != "one" {
				t.Errorf("first line = (%v, %q)", doc.Lines[0].Start, doc.Lines[0].Text)
			}
			if doc.WordSynced() {
				t.Error("line-sync documents never have word timings")
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if _, err := Parse(FormatRichsync, "{not json", "x"); err == nil {
		t.Error("malformed richsync payload should fail")
	}
	if _, err := Parse(FormatLineSync, `{"entries": "wrong shape"}`, "x"); err == nil {
		t.Error("wrong-shaped line-sync payload should fail")
	}
	if _, err := Parse(Format("bogus"), "anything", "x"); !errors.Is(err, ErrUnknownFormat) {
		t.Error("unknown format tag should fail with ErrUnknownFormat")
	}
}

func TestLinesAlwaysSorted(t *testing.T) {
	payloads := map[Format]string{
		FormatLRC:      "[01:00.00]b\n[00:10.00]a\n[00:30.00]m\n",
		FormatLineSync: `[{"time": 60, "text": "b"}, {"time": 10, "text": "a"}, {"time": 30, "text": "m"}]`,
		FormatRichsync: `[{"ts": 60, "te": 61, "x": "b"}, {"ts": 10, "te": 11, "x": "a"}]`,
	}

	for format, raw := range payloads {
		doc, err := Parse(format, raw, "test")
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", format, err)
		}
		for i := 1; i < len(doc.Lines); i++ {
			if doc.Lines[i].Start < doc.Lines[i-1].Start {
				t.Errorf("%s: line %d starts before line %d", format, i, i-1)
			}
		}
	}
}
