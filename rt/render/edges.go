package render

import (
	"image"
	"image/color"
	"time"

	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/editor"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawGizmos overlays the wireframes of gizmos on img as seen by cam.
func (r *Renderer) DrawGizmos(img *image.RGBA, cam *scene.Camera, gizmos []editor.Gizmo) {
	start := time.Now()
	var segments []editor.Segment
	for i := range gizmos {
		segments = gizmos[i].AppendSegments(segments[:0])
		c := gizmos[i].Color
		DrawEdges(img, cam, segments, color.RGBA{
			R: uint8(c[0]*255 + 0.5),
			G: uint8(c[1]*255 + 0.5),
			B: uint8(c[2]*255 + 0.5),
			A: 255,
		})
	}
	r.Profiler.EdgeTime += time.Since(start)
}

// DrawEdges projects world space segments with the same pixel mapping the
// primary rays use and draws them as one pixel lines. Segments are clipped
// against the near plane.
func DrawEdges(img *image.RGBA, cam *scene.Camera, segments []editor.Segment, c color.RGBA) {
	b := img.Bounds()
	dims := scene.NewDimensions(b.Dx(), b.Dy())
	for _, s := range segments {
		p0, p1 := cam.InternPos(s[0]), cam.InternPos(s[1])
		var ok bool
		if p0, p1, ok = clipNear(p0, p1, scene.DefaultNearClippingPlane); !ok {
			continue
		}
		x0, y0 := toScreen(p0, cam.FocalLength, &dims)
		x1, y1 := toScreen(p1, cam.FocalLength, &dims)
		line(img, b.Min.X+x0, b.Min.Y+y0, b.Min.X+x1, b.Min.Y+y1, c)
	}
}

func clipNear(p0, p1 mgl32.Vec3, near float32) (mgl32.Vec3, mgl32.Vec3, bool) {
	if p0[2] < near && p1[2] < near {
		return p0, p1, false
	}
	if p0[2] < near {
		p0 = p0.Add(p1.Sub(p0).Mul((near - p0[2]) / (p1[2] - p0[2])))
	} else if p1[2] < near {
		p1 = p1.Add(p0.Sub(p1).Mul((near - p1[2]) / (p0[2] - p1[2])))
	}
	return p0, p1, true
}

// toScreen inverts CameraRayProjection.RayDirectionAt for a camera space
// point.
func toScreen(p mgl32.Vec3, focal float32, d *scene.Dimensions) (int, int) {
	f := d.HalfHeight * focal / p[2]
	x := p[0]*f + d.HalfWidth - 0.5
	y := d.HalfHeight - 0.5 - p[1]*f
	return int(math32.Floor(x + 0.5)), int(math32.Floor(y + 0.5))
}

// line rasterizes with Bresenham, skipping pixels outside img.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	const limit = 1 << 15
	if max(abs(x0), abs(y0), abs(x1), abs(y1)) > limit {
		return
	}
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	r := img.Bounds()
	for {
		if (image.Point{X: x0, Y: y0}).In(r) {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
