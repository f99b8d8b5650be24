package match

import (
	"testing"

	"verso.dev/verso/internal/track"
)

func TestScoreDurationDominates(t *testing.T) {
	target := &track.Identity{Artist: "Arctic Monkeys", Title: "Do I Wanna Know?", Duration: 272}

	close := &track.Identity{Artist: "Arctic Monkeys", Title: "Do I Wanna Know?", Duration: 270}
	if s := Score(target, close); s < AcceptThreshold {
		t.Errorf("near-identical duration scored %v, want >= %v", s, AcceptThreshold)
	}

	far := &track.Identity{Artist: "Arctic Monkeys", Title: "Do I Wanna Know?", Duration: 200}
	if s := Score(target, far); s >= AcceptThreshold {
		t.Errorf("70s duration mismatch scored %v, want below threshold", s)
	}
}

func TestScoreVersionTags(t *testing.T) {
	target := &track.Identity{Artist: "Daft Punk", Title: "Harder Better Faster Stronger"}

	studio := &track.Identity{Artist: "Daft Punk", Title: "Harder, Better, Faster, Stronger"}
	live := &track.Identity{Artist: "Daft Punk", Title: "Harder Better Faster Stronger (Live)"}

	if Score(target, studio) <= Score(target, live) {
		t.Error("studio version should outscore live version for an untagged target")
	}
}

func TestScoreQualifierStripping(t *testing.T) {
	target := &track.Identity{Artist: "Fleetwood Mac", Title: "Dreams"}
	remaster := &track.Identity{Artist: "Fleetwood Mac", Title: "Dreams (2004 Remaster)"}

	if s := Score(target, remaster); s < AcceptThreshold {
		t.Errorf("bracketed qualifier should not sink the score, got %v", s)
	}
}

func TestScoreCollaborations(t *testing.T) {
	target := &track.Identity{Artist: "Run The Jewels feat. Zack de la Rocha", Title: "Close Your Eyes"}
	cand := &track.Identity{Artist: "Zack de la Rocha, Run The Jewels", Title: "Close Your Eyes"}

	if s := Score(target, cand); s < AcceptThreshold {
		t.Errorf("reordered collaborators scored %v, want accepted", s)
	}
}

func TestScoreWrongTrack(t *testing.T) {
	target := &track.Identity{Artist: "Radiohead", Title: "Karma Police"}
	wrong := &track.Identity{Artist: "Radiohead", Title: "No Surprises"}

	if s := Score(target, wrong); s >= 0.9 {
		t.Errorf("different title scored suspiciously high: %v", s)
	}
}

func TestBest(t *testing.T) {
	target := &track.Identity{Artist: "Arctic Monkeys", Title: "505", Duration: 253}

	candidates := []track.Identity{
		{Artist: "Arctic Monkeys", Title: "505 (Live at Hollywood Bowl)", Duration: 281},
		{Artist: "Arctic Monkeys", Title: "505", Duration: 253},
		{Artist: "Arctic Monkeys Tribute Band", Title: "Brianstorm", Duration: 170},
	}

	idx, score, ok := Best(target, candidates)
	if !ok {
		t.Fatalf("expected an accepted match, best score %v", score)
	}
	if idx != 1 {
		t.Errorf("Best() picked index %d, want 1", idx)
	}
}

func TestBestRejectsAll(t *testing.T) {
	target := &track.Identity{Artist: "Autechre", Title: "Gantz Graf"}

	candidates := []track.Identity{
		{Artist: "Some Other Band", Title: "Completely Different Song"},
		{Artist: "Nobody", Title: "Nothing Alike"},
	}

	if idx, _, ok := Best(target, candidates); ok {
		t.Errorf("expected rejection, got index %d", idx)
	}
	if _, _, ok := Best(target, nil); ok {
		t.Error("empty candidate list must not match")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello,   World!  ", "hello world"},
		{"Song (Remastered) [2011]", "song"},
		{"ALL CAPS", "all caps"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
