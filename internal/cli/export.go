package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/amterp/ra"

	"github.com/amterp/forts/internal/blob"
	"github.com/amterp/forts/internal/config"
	"github.com/amterp/forts/internal/export"
	"github.com/amterp/forts/internal/service"
)

func registerExport(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("export")
	cmd.SetDescription("Write the filtered catalog as JSON to a file or S3")

	ctx.ExportOut, _ = ra.NewString("out").
		SetShort("o").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("File path or s3://bucket/key (default: named after the filters)").
		Register(cmd)

	ctx.ExportSearch, ctx.ExportType, ctx.ExportRegion = registerFilterFlags(cmd)

	ctx.ExportUsed, _ = parent.RegisterCmd(cmd)
}

func runExport(configPath, out, search, fortType, region string) {
	ctx := context.Background()
	app := mustApp(ctx, AppOptions{ConfigPath: configPath})
	defer app.Close()

	info, doc, err := exportCatalog(ctx, app.Service, app.Config.Export, out, search, fortType, region, time.Now())
	if err != nil {
		app.Fatal(err)
	}
	PrintSuccess("Exported %d of %d forts to %s", len(doc.Forts), doc.Total, RenderURL(info.Location))
}

// exportCatalog writes the visible subset to dest, or to a name derived from
// the filters when dest is empty.
func exportCatalog(ctx context.Context, svc *service.FortService, cfg config.ExportConfig, dest, search, fortType, region string, now time.Time) (blob.Info, *export.Document, error) {
	p, err := present(ctx, svc, search, fortType, region)
	if err != nil {
		return blob.Info{}, nil, err
	}
	if dest == "" {
		dest = export.DefaultKey(p.Criteria(), now)
	}

	target, err := blob.ParseTarget(dest)
	if err != nil {
		return blob.Info{}, nil, err
	}
	store, err := blob.Open(ctx, target, blob.S3Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		PathStyle: cfg.S3PathStyle,
	})
	if err != nil {
		return blob.Info{}, nil, fmt.Errorf("open %s: %w", dest, err)
	}

	doc := export.Build(p, now)
	info, err := export.Write(ctx, store, target.Key, doc)
	if err != nil {
		return blob.Info{}, nil, fmt.Errorf("write %s: %w", dest, err)
	}
	return info, doc, nil
}
