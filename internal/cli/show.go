package cli

import (
	"context"
	"io"
	"os"

	"github.com/amterp/ra"

	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/util"
)

func registerShow(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("show")
	cmd.SetDescription("Display fort details")

	ctx.ShowID, _ = ra.NewString("id").
		SetUsage("Fort ID").
		SetCompletionFunc(completeForts).
		Register(cmd)

	ctx.ShowJSON, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Output as JSON").
		Register(cmd)

	ctx.ShowUsed, _ = parent.RegisterCmd(cmd)
}

func runShow(configPath, id string, jsonOutput bool) {
	ctx := context.Background()
	app := mustApp(ctx, AppOptions{ConfigPath: configPath})
	defer app.Close()

	f, err := app.Service.Get(ctx, id)
	if err != nil {
		app.Fatal(err)
	}

	if jsonOutput {
		if err := printJson(FortOutput{Fort: f}); err != nil {
			app.Fatal(err)
		}
		return
	}
	printFort(os.Stdout, f)
}

func printFort(w io.Writer, f *model.Fort) {
	const labelWidth = 12

	fprintln(w, TitleBox(f.Name))
	fprintln(w)

	fprintln(w, LabelValue("ID", RenderID(f.ID), labelWidth))
	fprintln(w, LabelValue("Type", RenderBadge(f), labelWidth))
	fprintln(w, LabelValue("District", f.District, labelWidth))
	fprintln(w, LabelValue("Region", string(f.Region), labelWidth))
	fprintln(w, LabelValue("Elevation", f.Elevation, labelWidth))
	fprintln(w, LabelValue("Period", f.Period, labelWidth))
	fprintln(w, LabelValue("Built by", f.BuiltBy, labelWidth))
	fprintln(w, LabelValue("Status", f.CurrentStatus, labelWidth))
	fprintln(w, LabelValue("Best time", f.BestTimeToVisit, labelWidth))
	fprintln(w, LabelValue("Trek", string(f.TrekDifficulty), labelWidth))
	if f.EntranceFee != "" {
		fprintln(w, LabelValue("Entry fee", f.FeeLabel(), labelWidth))
	}

	if f.Significance != "" {
		fprintln(w)
		fprintln(w, RenderMuted("Significance:"))
		fprintln(w, "  "+f.Significance)
	}

	if len(f.Images) > 0 {
		fprintln(w)
		fprintln(w, RenderMuted("Images:"))
		for _, img := range f.Images {
			fprintln(w, "  "+RenderURL(img))
		}
	}

	if f.CreatedAtMillis > 0 {
		fprintln(w)
		fprintln(w, LabelValue("Added", RenderMuted(util.FormatMillis(f.CreatedAtMillis)), labelWidth))
	}
}
