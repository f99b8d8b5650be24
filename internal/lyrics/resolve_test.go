package lyrics

import "testing"

func TestResolveLine(t *testing.T) {
	doc := &Document{
		Lines: []Line{
			{Start: 10, Text: "one"},
			{Start: 20, Text: "two"},
			{Start: 30, Text: "three"},
		},
		Format: FormatLRC,
	}

	tests := []struct {
		position float64
		wantLine int
	}{
		{25, 1},
		{5, -1},
		{30, 2},
		{1000, 2},
		{10, 0},
		{19.999, 0},
	}

	for _, tt := range tests {
		got := Resolve(doc, tt.position)
		if got.Line != tt.wantLine {
			t.Errorf("Resolve(pos=%v).Line = %d, want %d", tt.position, got.Line, tt.wantLine)
		}
		if got.Word != -1 {
			t.Errorf("Resolve(pos=%v).Word = %d, want -1 for line-level document", tt.position, got.Word)
		}
	}
}

func TestResolveWord(t *testing.T) {
	doc := &Document{
		Lines: []Line{
			{
				Start: 0,
				Text:  "la la",
				Words: []Word{
					{Start: 0.0, End: 0.5, Text: "la"},
					{Start: 0.5, End: 1.0, Text: "la"},
				},
			},
			{Start: 2, Text: "after"},
		},
		Format: FormatRichsync,
	}

	tests := []struct {
		position float64
		wantLine int
		wantWord int
	}{
		{0.7, 0, 1},
		{0.2, 0, 0},
		{1.5, 0, 1}, // past all word ends, last word stays active
		{2.5, 1, -1},
	}

	for _, tt := range tests {
		got := Resolve(doc, tt.position)
		if got.Line != tt.wantLine || got.Word != tt.wantWord {
			t.Errorf("Resolve(pos=%v) = %+v, want line %d word %d", tt.position, got, tt.wantLine, tt.wantWord)
		}
	}
}

func TestResolveEmptyAndNil(t *testing.T) {
	if got := Resolve(nil, 10); got != NoHighlight {
		t.Errorf("Resolve(nil) = %+v", got)
	}
	if got := Resolve(&Document{}, 10); got != NoHighlight {
		t.Errorf("Resolve(empty) = %+v", got)
	}
}
