package analyzer

import (
	"fmt"
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// ContrastDetector finds regions with dense edges: Sobel magnitude, a box
// dilation to merge nearby edges and connected components.
type ContrastDetector struct {
	MinArea       int     // minimum region area in pixels
	EdgeThreshold float64 // gradient magnitude threshold
	Radius        int     // dilation radius in pixels
}

// NewContrastDetector creates a detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinArea:       500,
		EdgeThreshold: 30,
		Radius:        4,
	}
}

// Detect returns regions ordered by weight, heaviest first. Coordinates are
// relative to the image origin.
func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil, fmt.Errorf("image %dx%d is too small", b.Dx(), b.Dy())
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)

	edges := sobel(gray, d.EdgeThreshold)
	mask := dilate(edges, gray.Rect.Dx(), gray.Rect.Dy(), d.Radius)

	var regions []Region
	for _, rect := range components(mask, gray.Rect.Dx()) {
		area := rect.Dx() * rect.Dy()
		if area < d.MinArea {
			continue
		}
		weight := float64(countIn(edges, gray.Rect.Dx(), rect)) / float64(area)
		regions = append(regions, Region{Rect: rect, Weight: weight})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Weight > regions[j].Weight
	})
	return regions, nil
}

// sobel marks pixels whose gradient magnitude exceeds threshold. The border
// row and column stay unmarked.
func sobel(gray *image.Gray, threshold float64) []bool {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := make([]bool, w*h)
	px := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x])
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			out[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return out
}

// dilate grows the mask by r pixels in both directions. The square kernel
// is separable, so rows and columns are handled in two passes.
func dilate(mask []bool, w, h, r int) []bool {
	if r <= 0 {
		return mask
	}
	rows := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		last := -r - 1
		for x := 0; x < w+r; x++ {
			if x < w && mask[y*w+x] {
				last = x
			}
			if t := x - r; t >= 0 && t < w && x-last <= 2*r {
				rows[y*w+t] = true
			}
		}
	}

	out := make([]bool, len(mask))
	for x := 0; x < w; x++ {
		last := -r - 1
		for y := 0; y < h+r; y++ {
			if y < h && rows[y*w+x] {
				last = y
			}
			if t := y - r; t >= 0 && t < h && y-last <= 2*r {
				out[t*w+x] = true
			}
		}
	}
	return out
}

// components returns the bounding boxes of 4-connected marked areas in scan order
func components(mask []bool, w int) []image.Rectangle {
	visited := make([]bool, len(mask))
	var out []image.Rectangle
	var stack []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		visited[start] = true
		stack = append(stack[:0], start)
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for _, n := range [4]int{i - 1, i + 1, i - w, i + w} {
				if n < 0 || n >= len(mask) || visited[n] || !mask[n] {
					continue
				}
				// No wrapping across row ends
				if (n == i-1 || n == i+1) && n/w != y {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		out = append(out, image.Rect(minX, minY, maxX+1, maxY+1))
	}
	return out
}

func countIn(mask []bool, w int, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask[y*w+x] {
				n++
			}
		}
	}
	return n
}
