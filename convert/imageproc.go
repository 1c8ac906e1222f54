package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// scanNoiseSpecks is how many black pixels the scan simulation scatters over
// each page.
const scanNoiseSpecks = 3000

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func saveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
			return err
		}
	default:
		if err := png.Encode(f, img); err != nil {
			return err
		}
	}
	return f.Close()
}

// toGray converts any image to 8-bit grayscale.
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	xdraw.Draw(dst, b, src, b.Min, xdraw.Src)
	return dst
}

// scaleImage resizes src to w×h with Catmull-Rom interpolation.
func scaleImage(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// simulateScan degrades a rendered page so it resembles paper fed through a
// scanner: grayscale, slight blur, bumped contrast, scattered black specks.
// At the highest quality level the page is passed through untouched apart
// from the grayscale conversion being skipped.
func simulateScan(src image.Image, q Quality, rng *rand.Rand) image.Image {
	if q >= QualityHigh {
		return src
	}

	gray := toGray(src)
	blurred := boxBlur(gray, 1)
	adjustContrast(blurred, 1.2)
	speckle(blurred, scanNoiseSpecks, rng)
	return blurred
}

// boxBlur applies a (2r+1)² mean filter to a grayscale image. A single-radius
// box pass is close enough to the subtle gaussian the scan effect needs.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum, n int
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					sum += int(src.GrayAt(px, py).Y)
					n++
				}
			}
			dst.SetGray(x, y, color.Gray{Y: uint8(sum / n)})
		}
	}
	return dst
}

// adjustContrast scales pixel distance from mid-gray by factor, in place.
func adjustContrast(img *image.Gray, factor float64) {
	for i, v := range img.Pix {
		adjusted := 128 + (float64(v)-128)*factor
		if adjusted < 0 {
			adjusted = 0
		} else if adjusted > 255 {
			adjusted = 255
		}
		img.Pix[i] = uint8(adjusted)
	}
}

// speckle scatters n black pixels at random positions, in place.
func speckle(img *image.Gray, n int, rng *rand.Rand) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	for i := 0; i < n; i++ {
		x := b.Min.X + rng.Intn(w)
		y := b.Min.Y + rng.Intn(h)
		img.SetGray(x, y, color.Gray{Y: 0})
	}
}
