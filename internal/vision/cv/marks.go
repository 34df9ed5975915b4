// Package cv finds marked objects with OpenCV.
//
// Detection pipeline per call:
//  1. Crop the frame to the search region and convert it to a BGR Mat
//  2. Convert BGR to HSV and threshold with the mark's HSV range
//  3. Close small gaps in the outline with a rectangular kernel
//  4. Take external contours and keep bounding rects above MinArea
//
// The pixel finder in package vision gives the same answers for flat marker
// colors; this one tolerates shading and compression from the browser
// backend's screenshots.
package cv

import (
	"image"
	"sort"

	"gocv.io/x/gocv"

	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
	"scape-bot/internal/vision"
)

// Marks implements vision.MarkFinder on top of gocv.
type Marks struct {
	MinArea int
	// CloseSize is the morphology kernel size (default 3).
	CloseSize int
}

var _ vision.MarkFinder = Marks{}

// FindMarks returns mark rects in region (absolute coordinates), largest first.
func (m Marks) FindMarks(img *image.RGBA, mark vision.Mark, region geometry.Rect) []geometry.Rect {
	r := img.Bounds()
	if !region.Empty() {
		r = region.Image().Intersect(r)
	}
	if r.Empty() {
		return nil
	}
	sub, ok := img.SubImage(r).(*image.RGBA)
	if !ok {
		return nil
	}

	mat, err := gocv.ImageToMatRGB(sub)
	if err != nil {
		observability.LogError("Failed to convert image to mat: %v", err)
		return nil
	}
	defer mat.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

	lower := gocv.NewScalar(mark.HSVLow[0], mark.HSVLow[1], mark.HSVLow[2], 0)
	upper := gocv.NewScalar(mark.HSVHi[0], mark.HSVHi[1], mark.HSVHi[2], 0)
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	size := m.CloseSize
	if size <= 0 {
		size = 3
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(mask, &closed, gocv.MorphClose, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var rects []geometry.Rect
	for i := 0; i < contours.Size(); i++ {
		br := gocv.BoundingRect(contours.At(i))
		rect := geometry.FromImage(br.Add(r.Min))
		if rect.Area() < m.MinArea {
			continue
		}
		rects = append(rects, rect)
	}
	sort.SliceStable(rects, func(i, j int) bool { return rects[i].Area() > rects[j].Area() })
	observability.LogDebug("%s marks: %d contours, %d kept", mark.Name, contours.Size(), len(rects))
	return rects
}
