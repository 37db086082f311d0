package detection

import (
	"image"
	"image/color"
	"testing"
)

// createStripedSign draws thin vertical strokes across r, a stand-in for a
// line of lettering.
func createStripedSign(width, height int, r image.Rectangle) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if (x-r.Min.X)%10 < 2 {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// createHighEdgeDensityImage creates an image with very high edge density (not text)
func createHighEdgeDensityImage(width, height int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestEdgeDensityStrategy_FindsText(t *testing.T) {
	block := image.Rect(50, 50, 150, 80)
	img := createStripedSign(300, 150, block)

	box, ok := EdgeDensityStrategy{MinConfidence: DefaultMinConfidence}.DetectRegion(img)
	if !ok {
		t.Fatal("expected a text region")
	}
	if !box.Rect().Overlaps(block) {
		t.Errorf("region %+v should overlap the lettering at %v", box, block)
	}
	if !box.Rect().In(img.Bounds()) {
		t.Errorf("region %+v escapes the image", box)
	}
}

func TestEdgeDensityStrategy_EmptyImage(t *testing.T) {
	img := createTestImage(200, 150, color.White)

	if box, ok := (EdgeDensityStrategy{MinConfidence: DefaultMinConfidence}).DetectRegion(img); ok {
		t.Errorf("blank image should have no text region, got %+v", box)
	}
}

func TestDetectTextRegions_HighDensity(t *testing.T) {
	// Checkerboard noise exceeds the 40% density ceiling everywhere
	img := createHighEdgeDensityImage(200, 150)

	if regions := DetectTextRegions(img, 0.1); len(regions) != 0 {
		t.Errorf("expected no regions in noise, got %d", len(regions))
	}
}

func TestDetectTextRegions_MinConfidence(t *testing.T) {
	img := createStripedSign(300, 200, image.Rect(40, 40, 260, 120))

	low := DetectTextRegions(img, 0.1)
	high := DetectTextRegions(img, 0.99)

	if len(high) > len(low) {
		t.Errorf("Higher minConfidence should give fewer results: low=%d, high=%d", len(low), len(high))
	}
}

func TestDetectTextRegions_SortedByConfidence(t *testing.T) {
	img := createStripedSign(300, 200, image.Rect(20, 20, 280, 60))
	regions := DetectTextRegions(img, 0.1)

	for i := 1; i < len(regions); i++ {
		if regions[i-1].Confidence < regions[i].Confidence {
			t.Error("Text regions should be sorted by confidence (highest first)")
			break
		}
	}
}

func TestDetectTextRegions_SmallImage(t *testing.T) {
	// Smaller than every window
	img := createTestImage(50, 20, color.Black)

	if regions := DetectTextRegions(img, 0.1); len(regions) != 0 {
		t.Errorf("expected no regions, got %d", len(regions))
	}
}

func TestDetectEdges_UniformImage(t *testing.T) {
	img := createTestImage(20, 20, color.RGBA{90, 90, 90, 255})
	edges := detectEdges(lumaOf(img), 20, 20)

	for y := range edges {
		for x := range edges[y] {
			if edges[y][x] {
				t.Fatalf("unexpected edge at (%d,%d)", x, y)
			}
		}
	}
}

func TestDetectEdges_Step(t *testing.T) {
	img := createTestImage(20, 20, color.White)
	fillRect(img, image.Rect(10, 0, 20, 20), color.Black)
	edges := detectEdges(lumaOf(img), 20, 20)

	if !edges[5][9] {
		t.Error("expected an edge just left of the step")
	}
	if edges[5][5] || edges[5][15] {
		t.Error("flat areas should not be edges")
	}
	if edges[0][9] || edges[19][9] {
		t.Error("border rows are never edges")
	}
}

func TestCalculateHorizontalScore(t *testing.T) {
	edges := make([][]bool, 50)
	for y := 0; y < 50; y++ {
		edges[y] = make([]bool, 50)
	}

	// Vertical strokes: every row crosses many short runs, each column is one run
	for x := 5; x < 45; x += 4 {
		for y := 10; y < 40; y++ {
			edges[y][x] = true
		}
	}

	score := calculateHorizontalScore(edges, 0, 0, 50, 50)
	if score < 0.9 {
		t.Errorf("expected a strongly horizontal score, got %.2f", score)
	}
}

func TestCalculateHorizontalScore_Empty(t *testing.T) {
	edges := make([][]bool, 10)
	for y := range edges {
		edges[y] = make([]bool, 10)
	}

	if score := calculateHorizontalScore(edges, 0, 0, 10, 10); score != 0 {
		t.Errorf("expected 0 for empty edges, got %.2f", score)
	}
}

func TestMergeOverlappingRegions(t *testing.T) {
	regions := []TextRegion{
		{Bounds: BoundingBox{X: 0, Y: 0, Width: 50, Height: 20}, Confidence: 0.4},
		{Bounds: BoundingBox{X: 25, Y: 10, Width: 50, Height: 20}, Confidence: 0.7},
		{Bounds: BoundingBox{X: 200, Y: 200, Width: 10, Height: 10}, Confidence: 0.5},
	}

	merged := mergeOverlappingRegions(regions)

	if len(merged) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(merged))
	}
	want := BoundingBox{X: 0, Y: 0, Width: 75, Height: 30}
	if merged[0].Bounds != want {
		t.Errorf("merged bounds: got %+v, want %+v", merged[0].Bounds, want)
	}
	if merged[0].Confidence != 0.7 {
		t.Errorf("merged confidence: got %.2f, want 0.7", merged[0].Confidence)
	}
}

func TestMergeOverlappingRegions_Empty(t *testing.T) {
	if merged := mergeOverlappingRegions(nil); len(merged) != 0 {
		t.Errorf("expected empty result, got %d", len(merged))
	}
}

func TestAbsInt(t *testing.T) {
	tests := []struct{ in, want int }{{-5, 5}, {0, 0}, {7, 7}}
	for _, tt := range tests {
		if got := absInt(tt.in); got != tt.want {
			t.Errorf("absInt(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
