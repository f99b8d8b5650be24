// Package match scores provider search results against the track the
// player reports. Provider search is free text and returns near-duplicates
// (live takes, remasters, karaoke covers); without this filter the wrong
// lyrics get shown silently.
package match

import (
	"regexp"
	"sort"
	"strings"

	"verso.dev/verso/internal/track"
)

const (
	// AcceptThreshold is the minimum combined score for a candidate to be
	// accepted at all.
	AcceptThreshold = 0.60

	// highConfidence lets a clear winner through even when the runner-up
	// is close.
	highConfidence = 0.75

	// minGap is the required separation between the best and second-best
	// candidate below highConfidence.
	minGap = 0.08

	// durationTolerance is the absolute difference in seconds that incurs
	// no penalty.
	durationTolerance = 3.0
)

var (
	punctRe     = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spaceRe     = regexp.MustCompile(`\s+`)
	bracketRe   = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	versionTags = regexp.MustCompile(`(?:^|\s)(remix|live|acoustic|instrumental|radio edit|remastered|remaster|explicit|clean|unplugged|re recorded|edit|version|mono|stereo|deluxe|anniversary|reprise|demo)(?:\s|$)`)
)

// Score rates how likely candidate is the same recording as target,
// in [0, 1]. Title weighs more than artist; a known duration on both
// sides dominates, down to outright disqualification past the tolerance.
func Score(target, candidate *track.Identity) float64 {
	if target == nil || candidate == nil {
		return 0
	}

	title := titleSimilarity(target.Title, candidate.Title)
	artist := artistSimilarity(target.Artist, candidate.Artist)

	score := title*0.6 + artist*0.4

	if target.Album != "" && candidate.Album != "" {
		album := dice(normalizeText(target.Album), normalizeText(candidate.Album))
		score = score*0.9 + album*0.1
	}

	if target.Duration > 0 && candidate.Duration > 0 {
		score *= durationFactor(target.Duration, candidate.Duration)
	}

	return clamp01(score)
}

// Best returns the index and score of the best-scoring candidate, or
// ok=false when nothing clears the acceptance threshold. When candidates
// score close together the match is rejected rather than guessed, unless
// the winner is high-confidence on its own.
func Best(target *track.Identity, candidates []track.Identity) (int, float64, bool) {
	if target == nil || len(candidates) == 0 {
		return -1, 0, false
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		ranked = append(ranked, scored{idx: i, score: Score(target, &candidates[i])})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	best := ranked[0]
	if best.score < AcceptThreshold {
		return -1, best.score, false
	}
	if len(ranked) > 1 && best.score < highConfidence {
		if best.score-ranked[1].score < minGap {
			return -1, best.score, false
		}
	}

	return best.idx, best.score, true
}

func titleSimilarity(a, b string) float64 {
	baseA, tagsA := analyzeTitle(a)
	baseB, tagsB := analyzeTitle(b)

	d := dice(baseA, baseB)
	lev := 1.0
	if maxLen := max(len(baseA), len(baseB)); maxLen > 0 {
		lev = 1.0 - float64(levenshtein(baseA, baseB))/float64(maxLen)
	}
	score := d*0.6 + lev*0.4

	// version tags (remix, live, ...) must agree: matching tags get a
	// bonus, disjoint or one-sided tags a penalty
	switch {
	case len(tagsA) == 0 && len(tagsB) == 0:
		score += 0.05
	case len(tagsA) > 0 && len(tagsB) > 0:
		common := intersectCount(tagsA, tagsB)
		if common == len(tagsA) && common == len(tagsB) {
			score += 0.1
		} else if common == 0 {
			score -= 0.25
		}
	default:
		score -= 0.1
	}

	return clamp01(score)
}

func artistSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	na := normalizeArtist(a)
	nb := normalizeArtist(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	return dice(na, nb)
}

// durationFactor penalizes duration mismatch, steeply. Past ten seconds
// the candidate is effectively disqualified regardless of string scores.
func durationFactor(a, b float64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= durationTolerance:
		return 1.0
	case diff <= 5:
		return 0.9
	case diff <= 10:
		return 0.55
	default:
		return 0
	}
}

// analyzeTitle splits a title into a normalized base and its version tags.
// Tags are collected before bracketed qualifiers are dropped so that
// "(Live at ...)" still marks the candidate as a live take.
func analyzeTitle(title string) (string, map[string]bool) {
	flat := strings.ToLower(title)
	flat = punctRe.ReplaceAllString(flat, " ")
	flat = spaceRe.ReplaceAllString(flat, " ")

	tags := make(map[string]bool)
	for _, m := range versionTags.FindAllStringSubmatch(flat, -1) {
		tags[strings.ReplaceAll(m[1], " ", "")] = true
	}

	base := normalizeText(title)
	base = versionTags.ReplaceAllString(base, " ")
	base = strings.TrimSpace(spaceRe.ReplaceAllString(base, " "))
	return base, tags
}

// normalizeText lowercases, strips bracketed qualifiers and punctuation,
// and collapses whitespace.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = bracketRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// normalizeArtist handles collaborations: featured artists and separators
// are split out, articles dropped, and the pieces sorted so the same set
// of artists compares equal regardless of order.
func normalizeArtist(s string) string {
	s = normalizeText(s)
	s = strings.ReplaceAll(s, " featuring ", " feat ")
	s = strings.ReplaceAll(s, " ft ", " feat ")

	var parts []string
	for _, chunk := range strings.FieldsFunc(s, func(r rune) bool { return r == '&' || r == ',' }) {
		for _, piece := range strings.Split(chunk, " feat ") {
			piece = strings.TrimSpace(strings.ReplaceAll(" "+piece+" ", " the ", " "))
			if piece != "" {
				parts = append(parts, strings.Join(strings.Fields(piece), " "))
			}
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// dice computes the bigram Sørensen-Dice coefficient of two strings.
func dice(a, b string) float64 {
	ga := bigrams(a)
	gb := bigrams(b)
	if len(ga) == 0 && len(gb) == 0 {
		return 1
	}
	if len(ga) == 0 || len(gb) == 0 {
		return 0
	}
	inter := 0
	for g := range ga {
		if gb[g] {
			inter++
		}
	}
	return 2 * float64(inter) / float64(len(ga)+len(gb))
}

func bigrams(s string) map[string]bool {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make(map[string]bool, len(runes)-1)
	for i := 0; i+2 <= len(runes); i++ {
		out[string(runes[i:i+2])] = true
	}
	return out
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j, cb := range rb {
		curr[0] = j + 1
		for i, ca := range ra {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[i+1] = min(prev[i+1]+1, min(curr[i]+1, prev[i]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

func intersectCount(a, b map[string]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
