package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/signboard-mcp/internal/imaging"
)

// DefaultMinConfidence is the EdgeDensityStrategy cut-off used when none is
// configured.
const DefaultMinConfidence = 0.3

// TextRegion represents a detected text region
type TextRegion struct {
	Bounds     BoundingBox `json:"bounds"`
	Confidence float64     `json:"confidence"`
}

// EdgeDensityStrategy looks for text by its texture instead of its colour.
//
// It is the better choice for signs with light lettering on a dark plate,
// where ContourStrategy would select the plate's surroundings.
type EdgeDensityStrategy struct {
	// MinConfidence is the smallest window confidence (0.0 to 1.0) kept.
	MinConfidence float64
}

// DetectRegion implements Strategy. The highest-confidence merged window
// wins.
func (s EdgeDensityStrategy) DetectRegion(img image.Image) (BoundingBox, bool) {
	regions := DetectTextRegions(img, s.MinConfidence)
	if len(regions) == 0 {
		return BoundingBox{}, false
	}
	return regions[0].Bounds, true
}

// textWindows are the sliding window sizes tried, roughly one per text size.
var textWindows = []struct{ w, h int }{
	{100, 30}, // Small text
	{150, 40}, // Medium text
	{200, 50}, // Large text
	{80, 25},  // Very small text
}

// DetectTextRegions finds regions likely to contain text
// This is a heuristic-based approach that looks for areas with high edge density
// and appropriate aspect ratios typical of text. Results are sorted by
// confidence, highest first.
func DetectTextRegions(img image.Image, minConfidence float64) []TextRegion {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(imaging.Luma(img), width, height)

	candidates := make([]TextRegion, 0)

	for _, ws := range textWindows {
		stepX := ws.w / 2
		stepY := ws.h / 2

		for y := 0; y <= height-ws.h; y += stepY {
			for x := 0; x <= width-ws.w; x += stepX {
				edgeCount := 0
				for wy := 0; wy < ws.h; wy++ {
					for wx := 0; wx < ws.w; wx++ {
						if edges[y+wy][x+wx] {
							edgeCount++
						}
					}
				}

				density := float64(edgeCount) / float64(ws.w*ws.h)

				// Text typically has medium edge density (not too sparse, not too dense)
				if density < 0.05 || density > 0.4 {
					continue
				}

				horizontalScore := calculateHorizontalScore(edges, x, y, ws.w, ws.h)
				confidence := horizontalScore * (1.0 - math.Abs(density-0.2)/0.2)

				if confidence >= minConfidence {
					candidates = append(candidates, TextRegion{
						Bounds: BoundingBox{
							X:      x + bounds.Min.X,
							Y:      y + bounds.Min.Y,
							Width:  ws.w,
							Height: ws.h,
						},
						Confidence: math.Round(confidence*1000) / 1000,
					})
				}
			}
		}
	}

	merged := mergeOverlappingRegions(candidates)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	return merged
}

// detectEdges performs simple gradient-based edge detection.
//
// A pixel is an edge when its luma differs by more than 30 from its right or
// lower neighbour. Border pixels are never edges.
func detectEdges(gray *image.Gray, width, height int) [][]bool {
	edges := make([][]bool, height)
	const threshold = 30

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		row := y * gray.Stride
		for x := 1; x < width-1; x++ {
			c := int(gray.Pix[row+x])
			cx := int(gray.Pix[row+x+1])
			cy := int(gray.Pix[row+gray.Stride+x])

			if absInt(c-cx) > threshold || absInt(c-cy) > threshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// calculateHorizontalScore calculates how "horizontal" the edge distribution is
func calculateHorizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlappingRegions combines overlapping text regions
func mergeOverlappingRegions(regions []TextRegion) []TextRegion {
	if len(regions) == 0 {
		return regions
	}

	merged := make([]TextRegion, 0)

	for _, r := range regions {
		foundMerge := false
		for i := range merged {
			if r.Bounds.Rect().Overlaps(merged[i].Bounds.Rect()) {
				merged[i].Bounds = boxFromRect(r.Bounds.Rect().Union(merged[i].Bounds.Rect()))
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, r)
		}
	}

	return merged
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
