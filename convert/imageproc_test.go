package convert

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestBoxBlur_PreservesUniformImage(t *testing.T) {
	img := uniformGray(16, 16, 200)
	out := boxBlur(img, 1)
	for i, v := range out.Pix {
		if v != 200 {
			t.Fatalf("pixel %d changed to %d", i, v)
		}
	}
}

func TestBoxBlur_SmoothsEdges(t *testing.T) {
	img := uniformGray(8, 8, 0)
	img.SetGray(4, 4, color.Gray{Y: 255})
	out := boxBlur(img, 1)

	center := out.GrayAt(4, 4).Y
	if center == 0 || center == 255 {
		t.Fatalf("center pixel not smoothed: %d", center)
	}
	if n := out.GrayAt(3, 4).Y; n == 0 {
		t.Fatal("neighbour received no spill from the bright pixel")
	}
}

func TestAdjustContrast_ClampsAndScales(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix[0] = 0
	img.Pix[1] = 128
	img.Pix[2] = 255

	adjustContrast(img, 1.2)

	if img.Pix[0] != 0 {
		t.Fatalf("black clamped wrong: %d", img.Pix[0])
	}
	if img.Pix[1] != 128 {
		t.Fatalf("mid-gray must be the fixed point: %d", img.Pix[1])
	}
	if img.Pix[2] != 255 {
		t.Fatalf("white clamped wrong: %d", img.Pix[2])
	}
}

func TestSpeckle_AddsBlackPixels(t *testing.T) {
	img := uniformGray(64, 64, 255)
	speckle(img, 100, rand.New(rand.NewSource(1)))

	black := 0
	for _, v := range img.Pix {
		if v == 0 {
			black++
		}
	}
	if black == 0 {
		t.Fatal("no specks added")
	}
	if black > 100 {
		t.Fatalf("more black pixels than specks requested: %d", black)
	}
}

func TestSpeckle_EmptyImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 0, 0))
	speckle(img, 10, rand.New(rand.NewSource(1))) // must not panic
}

func TestSimulateScan_HighQualityPassthrough(t *testing.T) {
	src := uniformGray(8, 8, 100)
	out := simulateScan(src, QualityHigh, rand.New(rand.NewSource(1)))
	if out != image.Image(src) {
		t.Fatal("high quality should pass the image through untouched")
	}
}

func TestSimulateScan_DegradesLowerQuality(t *testing.T) {
	src := uniformGray(32, 32, 255)
	out := simulateScan(src, QualityLow, rand.New(rand.NewSource(1)))

	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("expected grayscale output, got %T", out)
	}
	black := 0
	for _, v := range gray.Pix {
		if v == 0 {
			black++
		}
	}
	if black == 0 {
		t.Fatal("scan simulation added no noise")
	}
}

func TestToGrayAndScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	gray := toGray(src)
	if gray.Bounds() != src.Bounds() {
		t.Fatal("bounds changed")
	}

	scaled := scaleImage(src, 5, 7)
	b := scaled.Bounds()
	if b.Dx() != 5 || b.Dy() != 7 {
		t.Fatalf("scaled to %dx%d", b.Dx(), b.Dy())
	}
}
