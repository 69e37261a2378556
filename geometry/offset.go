package geometry

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
)

// Offset grows a closed polygon outwards by delta pixels, or shrinks it when
// delta is negative, using rounded joins.  Mask polygons traced from a model
// segment mask sit slightly inside the object edge, this pushes them back
// out.  A delta of zero, or a polygon with less than three vertices, is
// returned unchanged.  Shrinking a polygon away completely returns nil
func Offset(poly []image.Point, delta float64) [][]image.Point {

	if delta == 0 || len(poly) < 3 {
		return [][]image.Point{poly}
	}

	// convert the polygon points to Clipper Path
	var path clipper.Path

	for _, pt := range poly {
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(delta)

	if len(solution) == 0 {
		return nil
	}

	// convert the solution back to points
	res := make([][]image.Point, 0, len(solution))

	for _, sol := range solution {
		points := make([]image.Point, 0, len(sol))

		for _, pt := range sol {
			points = append(points, image.Point{X: int(pt.X), Y: int(pt.Y)})
		}

		res = append(res, points)
	}

	return res
}
