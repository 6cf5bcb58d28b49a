package renderer

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/twinkle/internal/canvas"
)

const miterLimit = 4

// Raster is a canvas.Surface backed by an *image.RGBA. Geometry is
// transformed to device space when it is appended, as an HTML canvas does,
// and rasterised with anti-aliasing on Fill and Stroke.
//
// Drawing goes to a back buffer. Present publishes it, so DrawTo never sees
// a frame that is half painted.
type Raster struct {
	mu    sync.Mutex
	img   *image.RGBA
	front *image.RGBA

	filler  *rasterx.Filler
	stroker *rasterx.Stroker
	path    rasterx.Path

	tr          rasterx.Matrix2D
	alpha       float64
	lineWidth   float64
	strokeStyle color.NRGBA
	fillStyle   color.NRGBA

	badStyles map[string]bool
}

var (
	_ canvas.Surface   = (*Raster)(nil)
	_ canvas.Presenter = (*Raster)(nil)
)

// NewRaster creates a transparent surface of the given size
func NewRaster(width, height int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	black := color.NRGBA{A: 255}
	return &Raster{
		img:         img,
		front:       image.NewRGBA(img.Rect),
		filler:      rasterx.NewFiller(width, height, rasterx.NewScannerGV(width, height, img, img.Rect)),
		stroker:     rasterx.NewStroker(width, height, rasterx.NewScannerGV(width, height, img, img.Rect)),
		tr:          rasterx.Identity,
		alpha:       1,
		lineWidth:   1,
		strokeStyle: black,
		fillStyle:   black,
		badStyles:   make(map[string]bool),
	}
}

// Bounds returns the surface rectangle
func (r *Raster) Bounds() image.Rectangle {
	return r.img.Rect
}

// Present publishes everything drawn so far
func (r *Raster) Present() {
	r.mu.Lock()
	copy(r.front.Pix, r.img.Pix)
	r.mu.Unlock()
}

// DrawTo composites the last presented frame over dst with its top-left
// corner at `at`
func (r *Raster) DrawTo(dst draw.Image, at image.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.Draw(dst, r.front.Rect.Add(at), r.front, image.Point{}, draw.Over)
}

// Snapshot returns a copy of the back buffer
func (r *Raster) Snapshot() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := image.NewRGBA(r.img.Rect)
	copy(out.Pix, r.img.Pix)
	return out
}

func (r *Raster) BeginPath() {
	r.mu.Lock()
	r.path.Clear()
	r.mu.Unlock()
}

// Arc appends an arc as a new sub-path. Full turns produce a closed
// sub-path.
func (r *Raster) Arc(x, y, radius, startAngle, endAngle float64, counterclockwise bool) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	adder := &rasterx.MatrixAdder{Adder: &r.path, M: r.tr}
	sweep := arcSweep(startAngle, endAngle, counterclockwise)
	if math.Abs(sweep) >= 2*math.Pi {
		rasterx.AddCircle(x, y, radius, adder)
		return
	}
	addArc(adder, x, y, radius, startAngle, sweep)
}

// addArc approximates an open arc with one cubic per quarter turn at most
func addArc(p rasterx.Adder, x, y, radius, start, sweep float64) {
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4) * radius

	sin, cos := math.Sincos(start)
	p.Start(rasterx.ToFixedP(x+radius*cos, y+radius*sin))
	for i := 1; i <= n; i++ {
		sin1, cos1 := math.Sincos(start + step*float64(i))
		p.CubeBezier(
			rasterx.ToFixedP(x+radius*cos-k*sin, y+radius*sin+k*cos),
			rasterx.ToFixedP(x+radius*cos1+k*sin1, y+radius*sin1-k*cos1),
			rasterx.ToFixedP(x+radius*cos1, y+radius*sin1),
		)
		sin, cos = sin1, cos1
	}
	p.Stop(false)
}

func arcSweep(start, end float64, ccw bool) float64 {
	sweep := end - start
	if !ccw {
		if sweep >= 2*math.Pi {
			return 2 * math.Pi
		}
		sweep = math.Mod(sweep, 2*math.Pi)
		if sweep < 0 {
			sweep += 2 * math.Pi
		}
		return sweep
	}
	if sweep <= -2*math.Pi {
		return -2 * math.Pi
	}
	sweep = math.Mod(sweep, 2*math.Pi)
	if sweep > 0 {
		sweep -= 2 * math.Pi
	}
	return sweep
}

func (r *Raster) Fill() {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.paint(r.fillStyle)
	if c.A == 0 || len(r.path) == 0 {
		return
	}
	r.filler.Clear()
	r.path.AddTo(r.filler)
	r.filler.SetColor(c)
	r.filler.Draw()
}

func (r *Raster) Stroke() {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.paint(r.strokeStyle)
	width := r.lineWidth * scaleFactor(r.tr)
	if c.A == 0 || width <= 0 || len(r.path) == 0 {
		return
	}
	r.stroker.Clear()
	r.stroker.SetStroke(toFixed(width), toFixed(miterLimit),
		rasterx.ButtCap, rasterx.ButtCap, rasterx.RoundGap, rasterx.Round)
	r.path.AddTo(r.stroker)
	r.stroker.SetColor(c)
	r.stroker.Draw()
}

func (r *Raster) ClearRect(x, y, width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if isTranslation(r.tr) {
		rect := image.Rect(
			int(math.Floor(x+r.tr.E)), int(math.Floor(y+r.tr.F)),
			int(math.Ceil(x+width+r.tr.E)), int(math.Ceil(y+height+r.tr.F)),
		).Intersect(r.img.Rect)
		if rect == r.img.Rect {
			clear(r.img.Pix)
			return
		}
		draw.Draw(r.img, rect, image.Transparent, image.Point{}, draw.Src)
		return
	}

	// Pixels whose centre maps back inside the rectangle are cleared
	inv := r.tr.Invert()
	for py := 0; py < r.img.Rect.Dy(); py++ {
		for px := 0; px < r.img.Rect.Dx(); px++ {
			ux, uy := inv.Transform(float64(px)+0.5, float64(py)+0.5)
			if ux >= x && ux < x+width && uy >= y && uy < y+height {
				r.img.SetRGBA(px, py, color.RGBA{})
			}
		}
	}
}

func (r *Raster) SetTransform(a, b, c, d, e, f float64) {
	r.mu.Lock()
	r.tr = rasterx.Matrix2D{A: a, B: b, C: c, D: d, E: e, F: f}
	r.mu.Unlock()
}

func (r *Raster) Translate(x, y float64) {
	r.mu.Lock()
	r.tr = r.tr.Translate(x, y)
	r.mu.Unlock()
}

func (r *Raster) Rotate(radians float64) {
	r.mu.Lock()
	r.tr = r.tr.Rotate(radians)
	r.mu.Unlock()
}

func (r *Raster) SetGlobalAlpha(alpha float64) {
	// canvas ignores non-finite values
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return
	}
	r.mu.Lock()
	r.alpha = alpha
	r.mu.Unlock()
}

func (r *Raster) SetLineWidth(width float64) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return
	}
	r.mu.Lock()
	r.lineWidth = width
	r.mu.Unlock()
}

func (r *Raster) SetStrokeStyle(style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.parse(style); ok {
		r.strokeStyle = c
	}
}

func (r *Raster) SetFillStyle(style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.parse(style); ok {
		r.fillStyle = c
	}
}

// parse keeps the previous style on error, as canvas does. Each bad style is logged once.
func (r *Raster) parse(style string) (color.NRGBA, bool) {
	c, err := canvas.ParseStyle(style)
	if err != nil {
		if !r.badStyles[style] {
			r.badStyles[style] = true
			log.Printf("[!] renderer: стиль %q проигнорирован: %v", style, err)
		}
		return color.NRGBA{}, false
	}
	return c, true
}

// paint applies the global alpha to a style colour
func (r *Raster) paint(c color.NRGBA) color.NRGBA {
	a := math.Max(0, math.Min(1, r.alpha))
	c.A = uint8(math.Round(float64(c.A) * a))
	return c
}

// scaleFactor is the average linear scale of m, used for line widths
func scaleFactor(m rasterx.Matrix2D) float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

func isTranslation(m rasterx.Matrix2D) bool {
	return m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
