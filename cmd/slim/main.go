package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "slim"
	app.Usage = "trace and edit scenes of meshes and analytic primitives on the CPU"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging, including BVH builds",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene description into a PNG image",
			Description: `
Load a YAML scene description, trace one ray per pixel from its camera and
write the shaded frame. Frame statistics are printed once done.`,
			ArgsUsage: "scene.yaml",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "width", Value: 640, Usage: "frame width"},
				cli.IntFlag{Name: "height", Value: 480, Usage: "frame height"},
				cli.StringFlag{Name: "mode, m", Value: "beauty", Usage: "beauty, normals, depth or uvs"},
				cli.IntFlag{Name: "downscale", Value: 1, Usage: "trace every n-th pixel and stretch the result"},
				cli.BoolFlag{Name: "no-shadows", Usage: "skip shadow rays"},
				cli.StringFlag{Name: "out, o", Value: "frame.png", Usage: "image filename for the rendered frame"},
			},
			Action: RenderFrame,
		},
		{
			Name:  "view",
			Usage: "open an interactive view of a scene",
			Description: `
Left click picks a geometry or light, left drag moves it on screen. Hold alt
to hover the faces of the selection box, then drag with the left, middle or
right button to translate, scale or rotate. Right drag orbits the camera,
middle drag pans and the wheel dollies. P saves a snapshot PNG. The scene
is reloaded whenever its file changes, unless --watch=false is given.`,
			ArgsUsage: "scene.yaml",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "width", Value: 1280, Usage: "window width"},
				cli.IntFlag{Name: "height", Value: 720, Usage: "window height"},
				cli.IntFlag{Name: "downscale", Value: 2, Usage: "trace every n-th pixel and stretch the result"},
				cli.StringFlag{Name: "mode, m", Value: "beauty", Usage: "beauty, normals, depth or uvs"},
				cli.BoolTFlag{Name: "watch", Usage: "reload the scene when its file changes"},
			},
			Action: View,
		},
		{
			Name:  "bench",
			Usage: "compare BVH traversal against testing every triangle",
			Description: `
Cast random rays at a mesh, once through its BVH and once against every
triangle, and report timings and any disagreement between the two.`,
			ArgsUsage: "[mesh.obj|mesh.mesh]",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "rays, n", Value: 100000, Usage: "number of rays"},
				cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed"},
				cli.BoolFlag{Name: "any", Usage: "run any hit queries"},
			},
			Action: Bench,
		},
		{
			Name:  "mesh",
			Usage: "mesh file tools",
			Subcommands: []cli.Command{
				{
					Name:      "export-cube",
					Usage:     "write the builtin cube as a mesh file",
					ArgsUsage: "out.mesh",
					Action:    ExportCube,
				},
				{
					Name:      "convert",
					Usage:     "build a mesh file from a wavefront obj file",
					ArgsUsage: "in.obj out.mesh",
					Action:    ConvertMesh,
				},
				{
					Name:      "info",
					Usage:     "print the header of a mesh or obj file",
					ArgsUsage: "mesh_file1 mesh_file2 ...",
					Action:    MeshInfo,
				},
			},
		},
		{
			Name:  "texture",
			Usage: "texture file tools",
			Subcommands: []cli.Command{
				{
					Name:      "convert",
					Usage:     "convert a PNG or BMP image into a texture file",
					ArgsUsage: "in.png out.texture",
					Flags: []cli.Flag{
						cli.BoolFlag{Name: "mipmap", Usage: "generate mip levels"},
						cli.BoolFlag{Name: "wrap", Usage: "repeat the texture outside [0, 1]"},
					},
					Action: ConvertTexture,
				},
				{
					Name:      "export",
					Usage:     "write one mip level of a texture file as PNG",
					ArgsUsage: "in.texture out.png",
					Flags: []cli.Flag{
						cli.IntFlag{Name: "mip", Usage: "mip level"},
					},
					Action: ExportTexture,
				},
			},
		},
		{
			Name:  "scene",
			Usage: "scene description tools",
			Subcommands: []cli.Command{
				{
					Name:      "example",
					Usage:     "write an example scene description",
					ArgsUsage: "[out.yaml]",
					Action:    ExampleScene,
				},
				{
					Name:      "info",
					Usage:     "load a scene description and list its contents",
					ArgsUsage: "scene.yaml",
					Action:    SceneInfo,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "slim: %v\n", err)
		os.Exit(1)
	}
}
