package analyzer

import "image"

// Region is an area of the backdrop worth drawing attention to
type Region struct {
	Rect   image.Rectangle
	Weight float64 // share of edge pixels inside Rect, 0.0-1.0
}

// Center returns the middle of the region
func (r Region) Center() image.Point {
	return image.Point{
		X: r.Rect.Min.X + r.Rect.Dx()/2,
		Y: r.Rect.Min.Y + r.Rect.Dy()/2,
	}
}

// Detector finds regions of interest in an image
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}
