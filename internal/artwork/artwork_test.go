package artwork

import (
	"image"
	"image/color"
	"testing"
)

func TestExtractPaletteNilImage(t *testing.T) {
	p := ExtractPalette(nil)
	if p.Primary != DefaultPalette().Primary {
		t.Errorf("nil image should yield the default palette, got %+v", p)
	}
}

func TestExtractPaletteSolidImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	p := ExtractPalette(img)
	if p == nil || p.Primary == "" {
		t.Fatal("palette extraction returned nothing")
	}
	if len(p.Primary) != 7 || p.Primary[0] != '#' {
		t.Errorf("Primary = %q, want #RRGGBB", p.Primary)
	}
}

func TestRenderHalfBlockDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	lines := RenderHalfBlock(img, 16, 8)
	if len(lines) != 8 {
		t.Errorf("len(lines) = %d, want 8", len(lines))
	}

	if got := RenderHalfBlock(nil, 16, 8); got != nil {
		t.Error("nil image should render nothing")
	}
	if got := RenderHalfBlock(img, 2, 1); got != nil {
		t.Error("tiny targets should render nothing")
	}
}

func TestFetchRejectsEmptyURL(t *testing.T) {
	if _, err := Fetch(""); err == nil {
		t.Error("Fetch(\"\") should error")
	}
}
