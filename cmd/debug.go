package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/helios/bvh"
	"github.com/achilleasa/helios/photon"
	"github.com/achilleasa/helios/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Build the acceleration structures for a scene and print their layout.
// Useful for checking BVH quality and photon distribution without rendering.
func Debug(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, _, err := scene.Builtin(ctx.Int("scene"), ctx.String("obj"))
	if err != nil {
		return err
	}
	if err = sc.Validate(); err != nil {
		return err
	}

	tree, err := bvh.Build(sc.Shapes, ctx.Int("bins"))
	if err != nil {
		return err
	}
	if err = tree.Verify(); err != nil {
		return fmt.Errorf("BVH verification failed: %v", err)
	}
	logger.Notice("BVH verification passed")
	tree4 := bvh.Collapse(tree)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Structure", "Nodes", "Leafs", "Shapes", "Infinite"})
	table.Append([]string{"BVH2", fmt.Sprintf("%d", len(tree.Nodes)), fmt.Sprintf("%d", countLeafs2(tree)), fmt.Sprintf("%d", len(tree.Shapes)), fmt.Sprintf("%d", tree.NumInfinite)})
	table.Append([]string{"BVH4", fmt.Sprintf("%d", len(tree4.Nodes)), fmt.Sprintf("%d", countLeafs4(tree4)), fmt.Sprintf("%d", len(tree4.Shapes)), fmt.Sprintf("%d", tree4.NumInfinite)})
	table.Render()
	logger.Noticef("acceleration structures\n%s", buf.String())

	if len(sc.Lights) == 0 {
		return nil
	}
	octree, stats, err := photon.Shoot(sc, tree, photon.ShootOptions{
		PhotonsPerLight: ctx.Int("photons"),
		Seed:            ctx.Int64("seed"),
	})
	if err != nil {
		return err
	}

	ostats := octree.Stats()
	buf.Reset()
	table = tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Cells", "Leafs", "Photons", "Max depth", "Deposited", "Discarded", "Lost"})
	table.Append([]string{
		fmt.Sprintf("%d", ostats.Cells),
		fmt.Sprintf("%d", ostats.Leafs),
		fmt.Sprintf("%d", ostats.Photons),
		fmt.Sprintf("%d", ostats.MaxDepth),
		fmt.Sprintf("%d", stats.Deposited),
		fmt.Sprintf("%d", stats.Discarded),
		fmt.Sprintf("%d", stats.Lost),
	})
	table.Render()
	logger.Noticef("photon octree (%s build)\n%s", stats.BuildTime, buf.String())
	return nil
}

func countLeafs2(tree *bvh.Tree) int {
	count := 0
	for _, node := range tree.Nodes {
		if node.IsLeaf() {
			count++
		}
	}
	return count
}

func countLeafs4(tree *bvh.Tree4) int {
	count := 0
	for _, node := range tree.Nodes {
		if node.IsLeaf() {
			count++
		}
	}
	return count
}
