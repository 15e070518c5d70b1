package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/amterp/ra"
	"github.com/google/uuid"

	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/flow"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/prompt"
	"github.com/amterp/forts/internal/service"
)

func registerAdd(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("add")
	cmd.SetDescription("Add a new fort")

	ctx.AddName, _ = ra.NewString("name").
		SetOptional(true).
		SetUsage("Fort name (prompted if omitted)").
		Register(cmd)

	ctx.AddType, _ = ra.NewString("type").
		SetShort("t").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Hill Fort, Sea Fort or Land Fort").
		SetCompletionFunc(completeTypes).
		Register(cmd)

	ctx.AddDistrict, _ = ra.NewString("district").
		SetShort("d").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("District").
		Register(cmd)

	ctx.AddRegion, _ = ra.NewString("region").
		SetShort("r").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Region of Maharashtra").
		SetCompletionFunc(completeRegions).
		Register(cmd)

	ctx.AddDifficulty, _ = ra.NewString("difficulty").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Trek difficulty").
		SetCompletionFunc(completeDifficulties).
		Register(cmd)

	ctx.AddElevation = optionalText(cmd, "elevation", "Elevation, e.g. 1,350 m")
	ctx.AddPeriod = optionalText(cmd, "period", "Period of construction")
	ctx.AddBuiltBy = optionalText(cmd, "built-by", "Builder or dynasty")
	ctx.AddSignificance = optionalText(cmd, "significance", "Historical significance")
	ctx.AddStatus = optionalText(cmd, "status", "Current condition")
	ctx.AddBestTime = optionalText(cmd, "best-time", "Best time to visit")
	ctx.AddFee = optionalText(cmd, "fee", "Entrance fee in rupees")

	ctx.AddJSON, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Output as JSON").
		Register(cmd)

	ctx.AddUsed, _ = parent.RegisterCmd(cmd)
}

func optionalText(cmd *ra.Cmd, name, usage string) *string {
	v, _ := ra.NewString(name).
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage(usage).
		Register(cmd)
	return v
}

func addFlags(ctx *CommandContext) model.FormInput {
	return model.FormInput{
		Name:            *ctx.AddName,
		Type:            *ctx.AddType,
		District:        *ctx.AddDistrict,
		Region:          *ctx.AddRegion,
		Elevation:       *ctx.AddElevation,
		Period:          *ctx.AddPeriod,
		BuiltBy:         *ctx.AddBuiltBy,
		Significance:    *ctx.AddSignificance,
		CurrentStatus:   *ctx.AddStatus,
		BestTimeToVisit: *ctx.AddBestTime,
		TrekDifficulty:  *ctx.AddDifficulty,
		EntranceFee:     *ctx.AddFee,
	}
}

func runAdd(configPath string, in model.FormInput, jsonOutput, interactive bool) {
	ctx := context.Background()
	app := mustApp(ctx, AppOptions{ConfigPath: configPath, Interactive: interactive})
	defer app.Close()

	if interactive {
		var err error
		if in, err = fillMissing(app.Prompter, in); err != nil {
			app.Fatal(err)
		}
	}

	res, err := addFort(ctx, app.Service, in)
	if err != nil {
		var verrs fortserr.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				PrintError("%s", v.Message)
			}
			app.Close()
			os.Exit(1)
		}
		app.Fatal(err)
	}

	if jsonOutput {
		if err := printJson(FortOutput{Fort: res.Fort}); err != nil {
			app.Fatal(err)
		}
		return
	}
	n := res.Outcome.Notification
	PrintSuccess("%s: %s", n.Title, n.Description)
	fmt.Printf("Created fort %s (%s)\n", RenderID(res.Fort.ID), res.Fort.Name)
}

// addFort runs the create flow once with a fresh submission token. A store
// failure comes back as an error carrying the flow's notification text.
func addFort(ctx context.Context, svc *service.FortService, in model.FormInput) (*service.CreateResult, error) {
	res, err := svc.Create(ctx, in, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if res.Outcome.State == flow.Failed {
		return nil, fmt.Errorf("%s: %w", res.Outcome.Notification.Description, res.Outcome.Err)
	}
	return res, nil
}

// fillMissing prompts for the required fields that were not given as flags.
// Enums are chosen from a list, so they are always valid.
func fillMissing(p prompt.Prompter, in model.FormInput) (model.FormInput, error) {
	var err error
	if in.Name == "" {
		if in.Name, err = p.Input("Name", "", minLength("Name")); err != nil {
			return in, err
		}
	}
	if in.Type == "" {
		if in.Type, err = p.Select("Type", prompt.Strings(model.AllFortTypes())); err != nil {
			return in, err
		}
	}
	if in.District == "" {
		if in.District, err = p.Input("District", "", minLength("District")); err != nil {
			return in, err
		}
	}
	if in.Region == "" {
		if in.Region, err = p.Select("Region", prompt.Strings(model.AllRegions())); err != nil {
			return in, err
		}
	}
	if in.TrekDifficulty == "" {
		if in.TrekDifficulty, err = p.Select("Trek difficulty", prompt.Strings(model.AllTrekDifficulties())); err != nil {
			return in, err
		}
	}
	return in, nil
}

func minLength(label string) func(string) error {
	return func(s string) error {
		if utf8.RuneCountInString(strings.TrimSpace(s)) < 2 {
			return fmt.Errorf("%s must be at least 2 characters", label)
		}
		return nil
	}
}
