package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gekko3d/slim/rt/memory"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/sceneio"
	"github.com/gekko3d/slim/rt/texture"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func ExportCube(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() != 1 {
		return errors.New("missing output file argument")
	}
	out := ctx.Args().First()
	if err := mesh.Save(out, mesh.Cube()); err != nil {
		return err
	}
	logger.Infof("wrote %s", out)
	return nil
}

// ConvertMesh builds the BVH of an obj file once and stores the result.
func ConvertMesh(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() != 2 {
		return errors.New("expected input and output file arguments")
	}
	in, out := ctx.Args().Get(0), ctx.Args().Get(1)
	m, err := mesh.LoadOBJ(in, loadLogger(ctx))
	if err != nil {
		return err
	}
	if err := mesh.Save(out, m); err != nil {
		return err
	}
	logger.Infof("wrote %s: %d triangles, BVH height %d", out, m.TriangleCount(), m.BVH.Height)
	return nil
}

func MeshInfo(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"File", "Vertices", "Triangles", "Edges", "UVs", "Normals", "BVH nodes", "BVH height", "Bytes"})
	for _, path := range ctx.Args() {
		var h mesh.Header
		if strings.EqualFold(filepath.Ext(path), ".obj") {
			m, err := mesh.LoadOBJ(path, loadLogger(ctx))
			if err != nil {
				return err
			}
			h = m.Header()
		} else {
			var err error
			if h, err = mesh.LoadHeader(path); err != nil {
				return err
			}
		}
		table.Append([]string{
			path,
			fmt.Sprintf("%d", h.VertexCount),
			fmt.Sprintf("%d", h.TriangleCount),
			fmt.Sprintf("%d", h.EdgeCount),
			fmt.Sprintf("%d", h.UVsCount),
			fmt.Sprintf("%d", h.NormalsCount),
			fmt.Sprintf("%d", h.BVHNodeCount),
			fmt.Sprintf("%d", h.BVHHeight),
			fmt.Sprintf("%d", h.SizeInBytes()),
		})
	}
	table.Render()
	logger.Infof("mesh headers\n%s", buf.String())
	return nil
}

func ConvertTexture(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() != 2 {
		return errors.New("expected input and output file arguments")
	}
	in, out := ctx.Args().Get(0), ctx.Args().Get(1)
	img, err := texture.LoadImage(in)
	if err != nil {
		return err
	}
	var flags texture.Flags
	if ctx.Bool("mipmap") {
		flags |= texture.FlagMipmap
	}
	if ctx.Bool("wrap") {
		flags |= texture.FlagWrap
	}
	t := texture.FromImage(img, flags)
	if err := texture.Save(out, t); err != nil {
		return err
	}
	logger.Infof("wrote %s: %dx%d, %d mips", out, t.Width, t.Height, t.MipCount)
	return nil
}

// ExportTexture decodes a texture file back into an image, one mip at a
// time.
func ExportTexture(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() != 2 {
		return errors.New("expected input and output file arguments")
	}
	in, out := ctx.Args().Get(0), ctx.Args().Get(1)
	h, err := texture.LoadHeader(in)
	if err != nil {
		return err
	}
	var b memory.Budget
	h.Budget(&b)
	t, err := texture.Load(in, memory.NewArena(b.Bytes()))
	if err != nil {
		return err
	}
	mip := ctx.Int("mip")
	if mip < 0 || mip >= len(t.Mips) {
		return fmt.Errorf("mip %d out of range, %s has %d", mip, in, len(t.Mips))
	}
	if err := savePNG(out, t.Mips[mip].Image()); err != nil {
		return err
	}
	logger.Infof("wrote %s", out)
	return nil
}

func ExampleScene(ctx *cli.Context) error {
	setupLogging(ctx)
	var w io.Writer = os.Stdout
	if ctx.NArg() > 0 {
		f, err := os.Create(ctx.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return sceneio.Example().Encode(w)
}

func SceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	loaded, err := sceneio.Load(ctx.Args().First(), loadLogger(ctx))
	if err != nil {
		return err
	}
	s := loaded.Scene

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Object", "Position", "Material", "Flags"})
	for i := range s.Geometries {
		g := &s.Geometries[i]
		table.Append([]string{
			fmt.Sprintf("%d", i),
			g.Type.String(),
			fmt.Sprintf("%.2f", g.Transform.Position),
			fmt.Sprintf("%d", g.MaterialID),
			fmt.Sprintf("%#x", g.Flags),
		})
	}
	for i := range s.Lights {
		l := &s.Lights[i]
		table.Append([]string{
			fmt.Sprintf("L%d", i),
			l.Kind.String() + " light",
			fmt.Sprintf("%.2f", l.Position),
			"-",
			fmt.Sprintf("%.2f", l.Intensity),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("BVH height %d", s.BVH.Height), "", fmt.Sprintf("%d materials", len(s.Materials)), fmt.Sprintf("%d assets", len(loaded.Library.Assets()))})
	table.Render()
	logger.Infof("scene %s\n%s", ctx.Args().First(), buf.String())
	return nil
}
