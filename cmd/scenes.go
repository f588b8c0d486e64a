package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/helios/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the builtin scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Id", "Name", "Description"})
	for _, info := range scene.BuiltinScenes() {
		table.Append([]string{
			fmt.Sprintf("%d", info.ID),
			info.Name,
			info.Description,
		})
	}
	table.Render()
	logger.Noticef("builtin scenes\n%s", buf.String())
	return nil
}
