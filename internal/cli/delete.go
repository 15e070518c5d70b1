package cli

import (
	"context"
	"fmt"

	"github.com/amterp/ra"

	"github.com/amterp/forts/internal/flow"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/prompt"
)

func registerDelete(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("delete")
	cmd.SetDescription("Delete a fort")

	ctx.DeleteID, _ = ra.NewString("id").
		SetUsage("Fort ID").
		SetCompletionFunc(completeForts).
		Register(cmd)

	ctx.DeleteForce, _ = ra.NewBool("force").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Skip confirmation (required in non-interactive mode)").
		Register(cmd)

	ctx.DeleteUsed, _ = parent.RegisterCmd(cmd)
}

func runDelete(configPath, id string, force, interactive bool) {
	ctx := context.Background()
	app := mustApp(ctx, AppOptions{ConfigPath: configPath, Interactive: interactive})

	if err := deleteFort(ctx, app, id, force, interactive); err != nil {
		app.Fatal(err)
	}
	app.Close()
}

// deleteFort confirms and deletes one fort. A store failure is returned as
// an error carrying the flow's notification text.
func deleteFort(ctx context.Context, app *App, id string, force, interactive bool) error {
	f, err := app.Service.Get(ctx, id)
	if err != nil {
		return err
	}

	confirmed, err := confirmDelete(app.Prompter, f, force, interactive)
	if err != nil {
		return err
	}
	if !confirmed {
		PrintInfo("Cancelled")
		return nil
	}

	out, err := app.Service.Delete(ctx, f.ID, true)
	if err != nil {
		return err
	}
	if out.State == flow.Failed {
		return fmt.Errorf("%s: %w", out.Notification.Description, out.Err)
	}
	PrintSuccess("%s: deleted %q (%s)", out.Notification.Title, f.Name, f.ID)
	return nil
}

// confirmDelete is the terminal form of the confirmation dialog. Declining
// leaves the record untouched and nothing is sent to the store.
func confirmDelete(p prompt.Prompter, f *model.Fort, force, interactive bool) (bool, error) {
	if force {
		return true, nil
	}
	if !interactive {
		return false, fmt.Errorf("deleting %q (%s) requires --force in non-interactive mode", f.Name, f.ID)
	}
	return p.Confirm(
		fmt.Sprintf("Delete %q (%s)? This permanently removes it from the database.", f.Name, f.ID),
		false,
	)
}
