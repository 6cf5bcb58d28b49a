package canvas

// Surface is an immediate-mode 2D drawing target. Its method set mirrors the
// HTML canvas 2D context: path construction, stroking and filling with the
// current style, a current affine transform and a global alpha.
type Surface interface {
	BeginPath()
	Arc(x, y, radius, startAngle, endAngle float64, counterclockwise bool)
	Stroke()
	Fill()
	ClearRect(x, y, width, height float64)

	// SetTransform replaces the current transform with the matrix
	// [a c e; b d f; 0 0 1].
	SetTransform(a, b, c, d, e, f float64)
	Translate(x, y float64)
	Rotate(radians float64)

	SetGlobalAlpha(alpha float64)
	SetLineWidth(width float64)
	SetStrokeStyle(style string)
	SetFillStyle(style string)
}

// Presenter is implemented by surfaces that buffer drawing. Present shows
// everything drawn since the previous call.
type Presenter interface {
	Present()
}
