package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"github.com/achilleasa/helios/renderer"
	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Parse a render mode flag value.
func parseMode(value string) (tracer.RenderMode, error) {
	switch value {
	case "no-nee", "0":
		return tracer.NoNEE, nil
	case "nee", "1":
		return tracer.NormalNEE, nil
	case "p-nee", "pnee", "2":
		return tracer.PNEE, nil
	}
	return 0, fmt.Errorf("unknown render mode %q (want no-nee, nee or p-nee)", value)
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	leftMode, err := parseMode(ctx.String("mode"))
	if err != nil {
		return err
	}
	rightMode := leftMode
	rightAdaptive := ctx.Bool("adaptive")
	if right := ctx.String("right-mode"); right != "" {
		if rightMode, err = parseMode(right); err != nil {
			return err
		}
		rightAdaptive = ctx.Bool("right-adaptive")
	}

	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		MaxDepth:        ctx.Int("depth"),
		LeftMode:        leftMode,
		RightMode:       rightMode,
		LeftAdaptive:    ctx.Bool("adaptive"),
		RightAdaptive:   rightAdaptive,
		NumBins:         ctx.Int("bins"),
		UseBVH4:         ctx.Bool("bvh4"),
		PhotonsPerLight: ctx.Int("photons"),
		PhotonBounces:   ctx.Int("photon-bounces"),
		Exposure:        float32(ctx.Float64("exposure")),
		Gamma:           float32(ctx.Float64("gamma")),
		Workers:         ctx.Int("workers"),
		Seed:            ctx.Int64("seed"),
		MeshPath:        ctx.String("obj"),
	}

	sc, cam, err := scene.Builtin(ctx.Int("scene"), opts.MeshPath)
	if err != nil {
		return err
	}

	r, err := renderer.New(sc, cam, opts)
	if err != nil {
		return err
	}

	// Render progressively, one sample per pixel per pass, so long frames
	// report progress and stay interruptible between passes.
	spp := ctx.Int("spp")
	samplesPerPass := int(opts.FrameW * opts.FrameH)
	for pass := 1; pass <= spp; pass++ {
		if err = r.Compute(samplesPerPass); err != nil {
			return err
		}
		logger.Noticef("pass %d/%d done", pass, spp)
	}

	if err = writeFrame(r, ctx.String("out"), ctx.Bool("show-sampling")); err != nil {
		return err
	}
	displayFrameStats(r.Stats())
	return nil
}

func writeFrame(r *renderer.Renderer, path string, showSampling bool) error {
	img, err := r.Image(showSampling)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = png.Encode(f, img); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", path)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Instance", "Rect", "Mode", "Adaptive", "Samples", "Render time"})
	for _, stat := range stats.Instances {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%dx%d+%d+%d", stat.Rect.W, stat.Rect.H, stat.Rect.X, stat.Rect.Y),
			stat.Mode,
			fmt.Sprintf("%t", stat.Adaptive),
			fmt.Sprintf("%d", stat.Samples),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", stats.RenderTime.String()})
	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())

	if stats.PhotonsEmitted > 0 {
		logger.Noticef(
			"photon prepass: %d emitted, %d deposited, %d discarded in %s",
			stats.PhotonsEmitted, stats.PhotonsDeposited, stats.PhotonsDiscarded, stats.PhotonBuildTime,
		)
	}
	logger.Noticef("BVH build time: %s", stats.BVHBuildTime)
}
