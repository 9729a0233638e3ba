// Package render casts one primary ray per pixel through the scene tracer
// and shades the hits on the CPU. It backs the render command and the
// interactive viewer.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/gekko3d/slim/rt/tracer"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

var ErrUnknownMode = errors.New("render: unknown mode")

type Mode uint8

const (
	ModeBeauty Mode = iota
	ModeNormals
	ModeDepth
	ModeUVs
)

var modeNames = [...]string{"beauty", "normals", "depth", "uvs"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeBeauty, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

type Options struct {
	Width, Height int
	Mode          Mode
	Background    mgl32.Vec3
	Ambient       float32
	Shadows       bool
	// MaxDepth maps to black in depth mode and bounds primary rays.
	MaxDepth float32
	// Downscale traces every Downscale-th pixel and stretches the result.
	Downscale int
}

func DefaultOptions() Options {
	return Options{
		Width:      640,
		Height:     480,
		Mode:       ModeBeauty,
		Background: mgl32.Vec3{0.1, 0.1, 0.12},
		Ambient:    0.1,
		Shadows:    true,
		MaxDepth:   scene.DefaultFarClippingPlane,
		Downscale:  1,
	}
}

// Renderer owns the tracer scratch state and the frame buffers, so frames
// of the same size reuse them.
type Renderer struct {
	Options  Options
	Profiler Profiler

	tracer     *tracer.SceneTracer
	stackSizes [2]int
	dims       scene.Dimensions
	projection scene.CameraRayProjection
	small      *image.RGBA
	frame      *image.RGBA
	ray        core.Ray
	hit        core.RayHit
}

func New(opts Options) *Renderer {
	if opts.Downscale < 1 {
		opts.Downscale = 1
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = scene.DefaultFarClippingPlane
	}
	return &Renderer{Options: opts}
}

// Resize changes the output size of the next frames.
func (r *Renderer) Resize(width, height int) {
	r.Options.Width, r.Options.Height = width, height
}

// Render traces s as seen by cam. The returned image is reused by the next
// call.
func (r *Renderer) Render(s *scene.Scene, cam *scene.Camera) *image.RGBA {
	o := &r.Options
	w, h := max(o.Width/o.Downscale, 1), max(o.Height/o.Downscale, 1)
	r.frame = ensure(r.frame, o.Width, o.Height)
	target := r.frame
	if w != o.Width || h != o.Height {
		r.small = ensure(r.small, w, h)
		target = r.small
	}

	// The tracer stacks are sized by the deepest BVH they will walk.
	sizes := [2]int{int(s.BVH.Height) + 2, s.MeshStackSize}
	if r.tracer == nil || sizes[0] > r.stackSizes[0] || sizes[1] > r.stackSizes[1] {
		r.tracer = tracer.NewSceneTracer(sizes[0], sizes[1])
		r.stackSizes = sizes
	}

	start := time.Now()
	r.dims.Update(w, h)
	r.projection.Reset(cam, &r.dims, false)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := r.trace(s, cam, r.projection.RayDirectionAt(x, y).Normalize())
			target.SetRGBA(x, y, toRGBA(c))
		}
	}
	r.Profiler.TraceTime += time.Since(start)
	r.Profiler.Frames++

	if target == r.frame {
		return r.frame
	}
	start = time.Now()
	draw.NearestNeighbor.Scale(r.frame, r.frame.Bounds(), r.small, r.small.Bounds(), draw.Src, nil)
	r.Profiler.ScaleTime += time.Since(start)
	return r.frame
}

func ensure(img *image.RGBA, w, h int) *image.RGBA {
	if img != nil && img.Rect.Dx() == w && img.Rect.Dy() == h {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func (r *Renderer) trace(s *scene.Scene, cam *scene.Camera, direction mgl32.Vec3) mgl32.Vec3 {
	o := &r.Options
	r.Profiler.Rays++
	r.ray.Reset(cam.Position, direction)
	g := r.tracer.Trace(&r.ray, &r.hit, s, false, o.MaxDepth)
	if g == nil {
		return o.Background
	}
	r.Profiler.Hits++
	hit := r.hit
	tracer.ToWorld(g, &hit)
	if hit.Normal.Dot(direction) > 0 {
		hit.Normal = hit.Normal.Mul(-1)
	}

	switch o.Mode {
	case ModeNormals:
		return hit.Normal.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	case ModeDepth:
		d := 1 - mgl32.Clamp(r.projection.DepthAt(hit.Position)/o.MaxDepth, 0, 1)
		return mgl32.Vec3{d, d, d}
	case ModeUVs:
		return mgl32.Vec3{hit.UV.U, hit.UV.V, 0}
	}
	return r.shade(s, g, &hit)
}

func (r *Renderer) material(s *scene.Scene, g *scene.Geometry) scene.Material {
	if int(g.MaterialID) < len(s.Materials) {
		return s.Materials[g.MaterialID]
	}
	return scene.DefaultMaterial()
}

// shade is Lambert over every light with optional hard shadows. hit is in
// world space with the normal facing the viewer.
func (r *Renderer) shade(s *scene.Scene, g *scene.Geometry, hit *core.RayHit) mgl32.Vec3 {
	m := r.material(s, g)
	albedo := core.MulVec(m.Albedo, g.Color)
	if m.HasAlbedoMap() && int(m.TextureID) < len(s.Textures) {
		albedo = core.MulVec(albedo, s.Textures[m.TextureID].Sample(hit.UV.U, hit.UV.V, hit.UVCoverage))
	}

	c := albedo.Mul(r.Options.Ambient)
	if m.IsEmissive() {
		c = c.Add(m.Emission)
	}
	p := hit.Position.Add(hit.Normal.Mul(core.TraceOffset))
	for i := range s.Lights {
		l := &s.Lights[i]
		var toLight mgl32.Vec3
		var dist, intensity float32
		switch l.Kind {
		case scene.LightDirectional:
			toLight = l.Direction().Mul(-1)
			dist = l.ShadowBounds.FarDistance
			intensity = l.Intensity
		default:
			d := l.Position.Sub(p)
			dist = d.Len()
			if dist == 0 {
				continue
			}
			toLight = d.Mul(1 / dist)
			intensity = l.Attenuate(dist)
			if l.Kind == scene.LightSpot && toLight.Dot(l.Direction()) > -math32.Cos(mgl32.DegToRad(l.Edge)) {
				continue
			}
		}
		ndotl := hit.Normal.Dot(toLight)
		if ndotl <= 0 {
			continue
		}
		if r.Options.Shadows {
			r.Profiler.ShadowRays++
			if r.tracer.Occluded(s, p, p.Add(toLight.Mul(dist))) {
				continue
			}
		}
		c = c.Add(core.MulVec(albedo, l.Color).Mul(intensity * ndotl))
	}
	return c
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	b := func(v float32) uint8 { return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5) }
	return color.RGBA{R: b(c[0]), G: b(c[1]), B: b(c[2]), A: 255}
}
