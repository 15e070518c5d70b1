package cli

import (
	"context"
	"fmt"

	"github.com/amterp/ra"

	"github.com/amterp/forts/internal/store"
)

func registerMigrate(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("migrate")
	cmd.SetDescription("Apply the database schema")

	ctx.MigrateUsed, _ = parent.RegisterCmd(cmd)
}

func runMigrate(configPath string) {
	ctx := context.Background()
	app := mustApp(ctx, AppOptions{ConfigPath: configPath})
	defer app.Close()

	if err := migrate(ctx, app.Store); err != nil {
		app.Fatal(err)
	}
	PrintSuccess("Schema is up to date (%s)", app.Config.Store.Driver)
}

func migrate(ctx context.Context, st store.FortStore) error {
	m, ok := st.(store.Migrator)
	if !ok {
		return fmt.Errorf("store %T has no schema to migrate", st)
	}
	return m.Migrate(ctx)
}
