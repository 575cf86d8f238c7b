package media

import (
	"image"
	"sort"

	"github.com/disintegration/gift"
)

const paletteSampleSize = 64

type namedColor struct {
	name    string
	r, g, b int
}

var palette = []namedColor{
	{"Black", 0, 0, 0},
	{"White", 255, 255, 255},
	{"Gray", 128, 128, 128},
	{"Red", 220, 20, 60},
	{"Orange", 255, 140, 0},
	{"Yellow", 255, 215, 0},
	{"Green", 34, 139, 34},
	{"Teal", 0, 128, 128},
	{"Blue", 30, 144, 255},
	{"Purple", 128, 0, 128},
	{"Pink", 255, 105, 180},
	{"Brown", 139, 69, 19},
}

// Predominant maps every pixel of a downscaled copy of img to the nearest
// palette color and returns the colors ordered by share, largest first.
// Ties keep palette order. Mostly transparent pixels are ignored.
func Predominant(img image.Image, sampleSize int) []ColorShare {
	src := img
	if b := img.Bounds(); b.Dx() > sampleSize || b.Dy() > sampleSize {
		g := gift.New(gift.ResizeToFit(sampleSize, sampleSize, gift.BoxResampling))
		dst := image.NewNRGBA(g.Bounds(b))
		g.Draw(dst, img)
		src = dst
	}

	counts := make([]int, len(palette))
	total := 0
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			// un-premultiply back to 8-bit channels
			r8 := int(r * 0xff / a)
			g8 := int(g * 0xff / a)
			b8 := int(bl * 0xff / a)
			counts[nearest(r8, g8, b8)]++
			total++
		}
	}
	if total == 0 {
		return []ColorShare{}
	}

	idx := make([]int, 0, len(palette))
	for i, c := range counts {
		if c > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return counts[idx[i]] > counts[idx[j]]
	})

	shares := make([]ColorShare, 0, len(idx))
	for _, i := range idx {
		shares = append(shares, ColorShare{
			Name:  palette[i].name,
			Share: float64(counts[i]) / float64(total),
		})
	}
	return shares
}

func nearest(r, g, b int) int {
	best, bestDist := 0, -1
	for i, c := range palette {
		dr, dg, db := r-c.r, g-c.g, b-c.b
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
