package main

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/gekko3d/slim/rt/sceneio"
	"github.com/gekko3d/slim/rt/tracer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

type traceFunc func(ray *core.Ray, hit *core.RayHit) bool

type benchResult struct {
	name    string
	rays    int
	hits    int
	elapsed time.Duration
}

func (r benchResult) raysPerSecond() string {
	s := r.elapsed.Seconds()
	if s == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f", float64(r.rays)/s)
}

// Bench times BVH traversal against brute force, for a mesh or for every
// geometry of a scene description.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	n := ctx.Int("rays")
	if n <= 0 {
		return fmt.Errorf("invalid ray count %d", n)
	}
	anyHit := ctx.Bool("any")

	var (
		bounds      core.AABB
		label       string
		bvhTrace    traceFunc
		linearTrace traceFunc
	)
	switch {
	case ctx.NArg() > 1:
		return errors.New("expected at most one mesh or scene file argument")
	case ctx.NArg() == 1 && isSceneFile(ctx.Args().First()):
		loaded, err := sceneio.Load(ctx.Args().First(), loadLogger(ctx))
		if err != nil {
			return err
		}
		s := loaded.Scene
		bounds, label = sceneBounds(s), fmt.Sprintf("%d geometries", len(s.Geometries))
		t := tracer.ForScene(s)
		far := math32.Inf(1)
		bvhTrace = func(r *core.Ray, h *core.RayHit) bool { return t.Trace(r, h, s, anyHit, far) != nil }
		linearTrace = func(r *core.Ray, h *core.RayHit) bool {
			return tracer.TraceSceneLinear(t, r, h, s, anyHit, far) != nil
		}
	default:
		m := mesh.Cube()
		if ctx.NArg() == 1 {
			var err error
			if _, m, err = sceneio.NewLibrary(loadLogger(ctx)).LoadMesh(ctx.Args().First()); err != nil {
				return err
			}
		}
		bounds, label = m.AABB, fmt.Sprintf("%d triangles", m.TriangleCount())
		t := tracer.NewMeshTracer(m.StackSize())
		bvhTrace = func(r *core.Ray, h *core.RayHit) bool { return t.Trace(m, r, h, anyHit) }
		linearTrace = func(r *core.Ray, h *core.RayHit) bool { return tracer.TraceMeshLinear(m, r, h, anyHit) }
	}

	rays := randomRays(bounds, n, rand.New(rand.NewSource(ctx.Int64("seed"))))
	viaBVH := make([]float32, n)
	linear := make([]float32, n)
	results := []benchResult{
		runBench("bvh", rays, viaBVH, bvhTrace),
		runBench("linear", rays, linear, linearTrace),
	}

	mismatches := 0
	for i := range rays {
		// Any hit queries may stop on different primitives; only hit versus
		// miss has to agree.
		if anyHit {
			if math32.IsInf(viaBVH[i], 1) != math32.IsInf(linear[i], 1) {
				mismatches++
			}
		} else if math32.Abs(viaBVH[i]-linear[i]) > 1e-4 {
			mismatches++
		}
	}
	displayBenchStats(label, results, mismatches)
	if mismatches > 0 {
		return fmt.Errorf("%d of %d rays disagree", mismatches, n)
	}
	return nil
}

func isSceneFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func sceneBounds(s *scene.Scene) core.AABB {
	b := core.EmptyAABB()
	for _, a := range s.AABBs[:len(s.Geometries)] {
		b = b.Union(a)
	}
	if b.IsEmpty() {
		return core.UnitAABB(1)
	}
	return b
}

// randomRays aims from a sphere around bounds at points inside it.
func randomRays(bounds core.AABB, n int, rng *rand.Rand) []core.Ray {
	center, half := bounds.Center(), bounds.Extent().Mul(0.5)
	radius := 4 * half.Len()
	if radius == 0 {
		radius = 1
	}
	rnd := func() float32 { return rng.Float32()*2 - 1 }
	rays := make([]core.Ray, n)
	for i := range rays {
		dir := mgl32.Vec3{rnd(), rnd(), rnd()}
		if dir.Len() < 1e-3 {
			dir = mgl32.Vec3{0, 0, 1}
		}
		origin := center.Add(dir.Normalize().Mul(radius))
		target := center.Add(core.MulVec(mgl32.Vec3{rnd(), rnd(), rnd()}, half))
		rays[i].Reset(origin, target.Sub(origin).Normalize())
	}
	return rays
}

// runBench traces a copy of every ray; scene traces move the ray origin.
func runBench(name string, rays []core.Ray, distances []float32, trace traceFunc) benchResult {
	res := benchResult{name: name, rays: len(rays)}
	var ray core.Ray
	var hit core.RayHit
	start := time.Now()
	for i := range rays {
		ray = rays[i]
		hit.Distance = math32.Inf(1)
		if trace(&ray, &hit) {
			res.hits++
		} else {
			hit.Distance = math32.Inf(1)
		}
		distances[i] = hit.Distance
	}
	res.elapsed = time.Since(start)
	return res
}

func displayBenchStats(label string, results []benchResult, mismatches int) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Method", "Hits", "Time", "Rays/s"})
	for _, r := range results {
		table.Append([]string{
			r.name,
			fmt.Sprintf("%d", r.hits),
			r.elapsed.String(),
			r.raysPerSecond(),
		})
	}
	speedup := "-"
	if len(results) == 2 && results[0].elapsed > 0 {
		speedup = fmt.Sprintf("%.1fx", float64(results[1].elapsed)/float64(results[0].elapsed))
	}
	table.SetFooter([]string{label, fmt.Sprintf("%d mismatches", mismatches), "speedup", speedup})
	table.Render()
	logger.Infof("bench statistics\n%s", buf.String())
}
