package main

import (
	"os"

	"github.com/achilleasa/helios/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "helios"
	app.Usage = "render scenes using photon-guided ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a frame of a builtin scene",
			Description: `
Build the scene BVH, optionally run the photon prepass, and render a frame
progressively. When --right-mode is given the frame is split into two
side-by-side panels so sampling strategies can be compared on one image.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "scene",
					Value: 0,
					Usage: "builtin scene id (see the scenes command)",
				},
				cli.StringFlag{
					Name:  "mode",
					Value: "nee",
					Usage: "direct light mode: no-nee, nee or p-nee",
				},
				cli.StringFlag{
					Name:  "right-mode",
					Usage: "render the right half with a different mode",
				},
				cli.BoolFlag{
					Name:  "adaptive",
					Usage: "enable adaptive sample allocation",
				},
				cli.BoolFlag{
					Name:  "right-adaptive",
					Usage: "enable adaptive sampling for the right panel",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: 5,
					Usage: "max recursion depth",
				},
				cli.IntFlag{
					Name:  "photons",
					Value: 100000,
					Usage: "photons emitted per light for p-nee",
				},
				cli.IntFlag{
					Name:  "photon-bounces",
					Value: 8,
					Usage: "max photon bounces through transparent surfaces",
				},
				cli.IntFlag{
					Name:  "bins",
					Value: 16,
					Usage: "SAH bin count for the BVH build",
				},
				cli.BoolFlag{
					Name:  "bvh4",
					Usage: "traverse the collapsed 4-wide BVH",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "render instances per panel (0 = one)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "base PRNG seed",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "camera exposure for tone-mapping",
				},
				cli.Float64Flag{
					Name:  "gamma",
					Value: 2.2,
					Usage: "output gamma",
				},
				cli.StringFlag{
					Name:  "obj",
					Usage: "wavefront OBJ file for the mesh scene",
				},
				cli.BoolFlag{
					Name:  "show-sampling",
					Usage: "write the adaptive sampling heatmap instead of the frame",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list builtin scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:  "debug",
			Usage: "print acceleration structure stats for a scene",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "scene",
					Value: 0,
					Usage: "builtin scene id",
				},
				cli.IntFlag{
					Name:  "bins",
					Value: 16,
					Usage: "SAH bin count for the BVH build",
				},
				cli.IntFlag{
					Name:  "photons",
					Value: 100000,
					Usage: "photons emitted per light",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "base PRNG seed",
				},
				cli.StringFlag{
					Name:  "obj",
					Usage: "wavefront OBJ file for the mesh scene",
				},
			},
			Action: cmd.Debug,
		},
	}

	app.Run(os.Args)
}
