package lyrics

import "sort"

// Highlight is the resolved "what to highlight right now" for a document
// and a playback position. Indexes are -1 when nothing is active.
type Highlight struct {
	Line int
	Word int
}

// NoHighlight is the zero highlight: nothing active.
var NoHighlight = Highlight{Line: -1, Word: -1}

// Resolve maps a playback position to the active line and, when the line
// carries word timings, the active word. A position before the first
// line's start yields no active line at all so intros are not pre-lit.
func Resolve(doc *Document, position float64) Highlight {
	if doc == nil || len(doc.Lines) == 0 {
		return NoHighlight
	}
	if position != position { // NaN
		return NoHighlight
	}

	lineIdx := activeLine(doc.Lines, position)
	if lineIdx < 0 {
		return NoHighlight
	}

	return Highlight{
		Line: lineIdx,
		Word: activeWord(doc.Lines[lineIdx].Words, position),
	}
}

// activeLine finds the last line whose start is <= position. Lines are
// sorted at parse time, so binary search applies.
func activeLine(lines []Line, position float64) int {
	// first index with start > position
	idx := sort.Search(len(lines), func(i int) bool {
		return lines[i].Start > position
	})
	return idx - 1
}

// activeWord finds the last word with start <= position whose end has not
// passed; past the final word's end the last word stays active until the
// line changes.
func activeWord(words []Word, position float64) int {
	if len(words) == 0 {
		return -1
	}

	idx := sort.Search(len(words), func(i int) bool {
		return words[i].Start > position
	})
	if idx == 0 {
		return -1
	}
	return idx - 1
}
