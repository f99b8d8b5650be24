// Package artwork turns a player's mpris:artUrl into terminal colors: a
// small palette for styling the lyric view and an optional half-block
// rendering of the cover itself.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

// Palette holds hex colors picked from cover art.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Dim       string
}

// DefaultPalette is used when there is no artwork or extraction fails.
func DefaultPalette() *Palette {
	return &Palette{
		Primary:   "#8BA4E8",
		Secondary: "#E8A4C8",
		Accent:    "#B8A8E8",
		Dim:       "#6272A4",
	}
}

// Fetch loads the artwork behind an MPRIS art URL. Players hand out
// either file:// paths or plain HTTP URLs.
func Fetch(artURL string) (image.Image, error) {
	if artURL == "" {
		return nil, errors.New("empty artwork url")
	}

	if strings.HasPrefix(artURL, "file://") {
		f, err := os.Open(strings.TrimPrefix(artURL, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to open artwork file: %w", err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode artwork: %w", err)
		}
		return img, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

// ExtractPalette runs k-means over the cover and keeps the three most
// usable colors. Muddy or near-black clusters lose to saturated ones.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	clusters, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(clusters) < 3 {
		return DefaultPalette()
	}

	type candidate struct {
		r, g, b    uint32
		sat        float64
		brightness float64
		score      float64
	}

	ranked := make([]candidate, 0, len(clusters))
	for _, c := range clusters {
		r := float64(c.Color.R) / 255.0
		g := float64(c.Color.G) / 255.0
		b := float64(c.Color.B) / 255.0

		max := math.Max(math.Max(r, g), b)
		min := math.Min(math.Min(r, g), b)

		var sat float64
		if max > 0 {
			sat = (max - min) / max
		}

		ranked = append(ranked, candidate{
			r: c.Color.R, g: c.Color.G, b: c.Color.B,
			sat:        sat,
			brightness: max,
			score:      sat * (1.0 - math.Abs(max-0.6)),
		})
	}

	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			if ranked[j].score > ranked[i].score {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}

	hex := func(c candidate) string {
		return boost(c.r, c.g, c.b, c.brightness)
	}

	return &Palette{
		Primary:   hex(ranked[0]),
		Secondary: hex(ranked[1]),
		Accent:    hex(ranked[2]),
		Dim:       "#6272A4",
	}
}

// boost lifts very dark colors toward readable and desaturates near-white
// ones so text styled with them stays visible.
func boost(r, g, b uint32, brightness float64) string {
	if brightness > 0 && brightness < 0.4 {
		factor := math.Min(0.4/brightness, 2.5)
		r = uint32(math.Min(255, float64(r)*factor))
		g = uint32(math.Min(255, float64(g)*factor))
		b = uint32(math.Min(255, float64(b)*factor))
	}

	if brightness > 0.85 {
		avg := (r + g + b) / 3
		const factor = 0.7
		r = uint32(float64(avg) + (float64(r)-float64(avg))*factor)
		g = uint32(float64(avg) + (float64(g)-float64(avg))*factor)
		b = uint32(float64(avg) + (float64(b)-float64(avg))*factor)
	}

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// RenderHalfBlock draws the cover with ▀ cells, two pixels per row.
func RenderHalfBlock(img image.Image, width, height int) []string {
	if img == nil || width < 4 || height < 2 {
		return nil
	}

	resized := resize.Resize(uint(width), uint(height*2), img, resize.Lanczos3)
	bounds := resized.Bounds()

	lines := make([]string, height)
	for y := 0; y < height; y++ {
		var line strings.Builder
		topY := y * 2
		bottomY := topY + 1

		for x := 0; x < bounds.Dx(); x++ {
			topR, topG, topB, topA := resized.At(bounds.Min.X+x, bounds.Min.Y+topY).RGBA()

			bottomR, bottomG, bottomB, bottomA := topR, topG, topB, topA
			if bottomY < bounds.Dy() {
				bottomR, bottomG, bottomB, bottomA = resized.At(bounds.Min.X+x, bounds.Min.Y+bottomY).RGBA()
			}

			if topA>>8 < 128 && bottomA>>8 < 128 {
				line.WriteString(" ")
				continue
			}

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", topR>>8, topG>>8, topB>>8))).
				Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", bottomR>>8, bottomG>>8, bottomB>>8)))
			line.WriteString(style.Render("▀"))
		}
		lines[y] = line.String()
	}

	return lines
}
