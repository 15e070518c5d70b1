package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/amterp/ra"
	"github.com/charmbracelet/lipgloss"

	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/service"
)

func registerList(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("list")
	cmd.SetDescription("List forts, optionally filtered")

	ctx.ListSearch, ctx.ListType, ctx.ListRegion = registerFilterFlags(cmd)

	ctx.ListJSON, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Output as JSON").
		Register(cmd)

	ctx.ListUsed, _ = parent.RegisterCmd(cmd)
}

// registerFilterFlags adds the -q/-t/-r filter flags shared by list and export.
func registerFilterFlags(cmd *ra.Cmd) (search, fortType, region *string) {
	search, _ = ra.NewString("search").
		SetShort("q").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Case-insensitive text to find in name, district or region").
		Register(cmd)

	fortType, _ = ra.NewString("type").
		SetShort("t").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Only forts of this type").
		SetCompletionFunc(completeTypes).
		Register(cmd)

	region, _ = ra.NewString("region").
		SetShort("r").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Only forts in this region").
		SetCompletionFunc(completeRegions).
		Register(cmd)
	return search, fortType, region
}

// filterValues encodes the flags the way the web filter panel submits
// them, leaving out flags that were not given.
func filterValues(search, fortType, region string) url.Values {
	v := url.Values{}
	if search != "" {
		v.Set(catalog.ParamSearch, search)
	}
	if fortType != "" {
		v.Set(catalog.ParamType, fortType)
	}
	if region != "" {
		v.Set(catalog.ParamRegion, region)
	}
	return v
}

// checkFilterFlags rejects selector flags that name no type or region.
// The web selectors only offer valid values, but flags are typed by hand,
// so a typo must not silently widen the list. "All" is the only sentinel.
func checkFilterFlags(fortType, region string) error {
	if fortType != "" && !isAll(fortType) {
		if _, err := model.ParseFortType(fortType); err != nil {
			return err
		}
	}
	if region != "" && !isAll(region) {
		if _, err := model.ParseRegion(region); err != nil {
			return err
		}
	}
	return nil
}

func isAll(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), model.FilterAllLabel)
}

// present runs the same presenter the list page uses.
func present(ctx context.Context, svc *service.FortService, search, fortType, region string) (*catalog.Presenter, error) {
	if err := checkFilterFlags(fortType, region); err != nil {
		return nil, err
	}
	p := svc.List(ctx, model.NoFilter())
	p.Update(filterValues(search, fortType, region))
	return p, nil
}

func runList(configPath, search, fortType, region string, jsonOutput bool) {
	ctx := context.Background()
	app := mustApp(ctx, AppOptions{ConfigPath: configPath})
	defer app.Close()

	p, err := present(ctx, app.Service, search, fortType, region)
	if err != nil {
		app.Fatal(err)
	}
	if jsonOutput {
		if err := printJson(NewListOutput(p)); err != nil {
			app.Fatal(err)
		}
		return
	}
	printList(os.Stdout, p.View())
}

func printList(w io.Writer, view catalog.ListView) {
	if view.Empty {
		fprintln(w, RenderMuted("No forts found"))
		return
	}

	nameWidth := 0
	for _, f := range view.Forts {
		nameWidth = max(nameWidth, lipgloss.Width(f.Name))
	}
	nameStyle := lipgloss.NewStyle().Width(nameWidth)
	for _, f := range view.Forts {
		fprintln(w, fmt.Sprintf("%s  %s  %s  %s",
			RenderID(f.ID), nameStyle.Render(f.Name), RenderBadge(f),
			RenderMuted(f.District+", "+string(f.Region))))
	}
	fprintln(w, RenderMuted(fmt.Sprintf("%d of %d forts", len(view.Forts), view.Total)))
}
