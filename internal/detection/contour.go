package detection

import (
	"image"

	"github.com/ironsheep/signboard-mcp/internal/imaging"
)

// DefaultThreshold is the luma at or below which a pixel counts as ink.
const DefaultThreshold = 150

// ContourStrategy picks the dark outer contour enclosing the largest area.
//
// # Algorithm
//
//  1. Luma: convert to BT.601 grayscale
//  2. Binarize: pixels with luma <= Threshold are foreground (dark ink on a
//     light sign)
//  3. External fill: flood the background inward from the image border using
//     4-connectivity. Pixels the flood cannot reach are foreground or holes
//     enclosed by foreground.
//  4. Contours: trace the outer boundary of each 8-connected group of
//     enclosed pixels. Shapes nested in another shape's hole are part of the
//     outer shape and are not reported separately.
//  5. Area: the polygon through the boundary pixel centres, measured with the
//     shoelace formula. A 10x10 block encloses 81 and a one pixel wide rule
//     encloses 0, however long it is.
//  6. Selection: the largest area wins. On a tie the contour met first in
//     raster order (top to bottom, left to right) is kept.
//
// The result is the winner's bounding rectangle. Contours enclosing less than
// MinArea are ignored.
type ContourStrategy struct {
	// Threshold is the foreground cut-off, 0..255.
	Threshold uint8

	// MinArea is the smallest enclosed area in square pixels to consider.
	// Zero accepts any contour, even a single pixel.
	MinArea int
}

// contour is one traced outer contour.
type contour struct {
	bounds image.Rectangle // 0-origin, Max exclusive
	area2  int64           // twice the enclosed area
}

// area returns the enclosed area in square pixels.
func (c contour) area() float64 {
	return float64(c.area2) / 2
}

// DetectRegion implements Strategy.
func (s ContourStrategy) DetectRegion(img image.Image) (BoundingBox, bool) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return BoundingBox{}, false
	}

	p := binarize(imaging.Luma(img), s.Threshold)
	fillExternal(p)
	contours := findContours(p)

	minArea2 := 2 * int64(s.MinArea)
	best := -1
	for i, c := range contours {
		if c.area2 < minArea2 {
			continue
		}
		// strict > keeps the earliest on ties
		if best < 0 || c.area2 > contours[best].area2 {
			best = i
		}
	}
	if best < 0 {
		return BoundingBox{}, false
	}

	return boxFromRect(contours[best].bounds.Add(bounds.Min)), true
}

// Pixel flags held in a plane.
const (
	foreground uint8 = 1 << iota
	outside
	traced
)

// plane is a row-major buffer of pixel flags, one byte per pixel.
type plane struct {
	w, h  int
	flags []uint8
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, flags: make([]uint8, w*h)}
}

// has reports whether (x, y) is inside the plane and carries any of f.
func (p *plane) has(x, y int, f uint8) bool {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return false
	}
	return p.flags[y*p.w+x]&f != 0
}

// enclosed reports whether (x, y) is inside the plane and was not reached by
// the external fill.
func (p *plane) enclosed(x, y int) bool {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return false
	}
	return p.flags[y*p.w+x]&outside == 0
}

// open reports whether (x, y) is background the external fill has not yet
// reached.
func (p *plane) open(x, y int) bool {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return false
	}
	return p.flags[y*p.w+x]&(foreground|outside) == 0
}

// binarize marks pixels at or below threshold as foreground.
func binarize(gray *image.Gray, threshold uint8) *plane {
	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()

	p := newPlane(width, height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x, v := range row {
			if v <= threshold {
				p.flags[y*width+x] = foreground
			}
		}
	}
	return p
}

// fillExternal marks every background pixel reachable from the image border
// as outside. Background connectivity is 4-way, the dual of the 8-way
// foreground connectivity used by findContours.
//
// It is a scanline fill: each seed is widened to its whole horizontal span
// and only the first pixel of each open run above and below is queued.
func fillExternal(p *plane) {
	seeds := make([]int, 0, 2*(p.w+p.h))
	for x := 0; x < p.w; x++ {
		seeds = append(seeds, x, (p.h-1)*p.w+x)
	}
	for y := 0; y < p.h; y++ {
		seeds = append(seeds, y*p.w, y*p.w+p.w-1)
	}

	for len(seeds) > 0 {
		i := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]

		x, y := i%p.w, i/p.w
		if !p.open(x, y) {
			continue
		}

		left, right := x, x
		for p.open(left-1, y) {
			left--
		}
		for p.open(right+1, y) {
			right++
		}
		for xx := left; xx <= right; xx++ {
			p.flags[y*p.w+xx] |= outside
		}

		for _, ny := range [2]int{y - 1, y + 1} {
			inRun := false
			for xx := left; xx <= right; xx++ {
				if !p.open(xx, ny) {
					inRun = false
					continue
				}
				if !inRun {
					seeds = append(seeds, ny*p.w+xx)
					inRun = true
				}
			}
		}
	}
}

// findContours traces one outer contour per 8-connected group of enclosed
// pixels, in raster order of each group's first pixel.
//
// Every horizontal run of enclosed pixels starts on its group's outer
// boundary, so a run start the tracer has not visited belongs to a new group.
func findContours(p *plane) []contour {
	contours := make([]contour, 0)

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			if !p.enclosed(x, y) || p.enclosed(x-1, y) {
				continue
			}
			if p.has(x, y, traced) {
				continue
			}
			contours = append(contours, traceContour(p, image.Pt(x, y)))
		}
	}

	return contours
}

// moore lists the 8 neighbour offsets clockwise from east, with y growing
// downward.
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// traceContour follows the outer boundary of the group containing start with
// Moore-neighbour tracing, marking each boundary pixel as traced. start's
// west neighbour must not be enclosed.
//
// Tracing stops when it is about to leave start in the same direction as the
// first move (Jacob's criterion).
func traceContour(p *plane, start image.Point) contour {
	c := contour{bounds: image.Rect(start.X, start.Y, start.X+1, start.Y+1)}
	p.flags[start.Y*p.w+start.X] |= traced

	// sweep clockwise from direction dir for the next enclosed neighbour
	sweep := func(from image.Point, dir int) (image.Point, int, bool) {
		for i := 0; i < 8; i++ {
			d := (dir + i) % 8
			q := from.Add(moore[d])
			if p.enclosed(q.X, q.Y) {
				return q, d, true
			}
		}
		return from, 0, false
	}

	second, dir, ok := sweep(start, 4)
	if !ok {
		// isolated pixel
		return c
	}

	cur, next := start, second
	limit := 4*len(p.flags) + 4
	for i := 0; i < limit; i++ {
		c.area2 += int64(cur.X)*int64(next.Y) - int64(next.X)*int64(cur.Y)

		cur = next
		p.flags[cur.Y*p.w+cur.X] |= traced
		c.bounds = c.bounds.Union(image.Rect(cur.X, cur.Y, cur.X+1, cur.Y+1))

		// resume just past the background neighbour checked before cur
		next, dir, _ = sweep(cur, (dir+6-dir%2)%8)
		if cur == start && next == second {
			break
		}
	}

	if c.area2 < 0 {
		c.area2 = -c.area2
	}
	return c
}
