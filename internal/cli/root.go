package cli

import (
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	NonInteractive *bool
	ConfigPath     *string

	// init command
	InitUsed *bool

	// serve command
	ServeUsed      *bool
	ServePort      *int
	ServeDev       *bool
	ServeTemplates *string
	ServeNoOpen    *bool

	// list command
	ListUsed   *bool
	ListSearch *string
	ListType   *string
	ListRegion *string
	ListJSON   *bool

	// show command
	ShowUsed *bool
	ShowID   *string
	ShowJSON *bool

	// add command
	AddUsed         *bool
	AddName         *string
	AddType         *string
	AddDistrict     *string
	AddRegion       *string
	AddElevation    *string
	AddPeriod       *string
	AddBuiltBy      *string
	AddSignificance *string
	AddStatus       *string
	AddBestTime     *string
	AddDifficulty   *string
	AddFee          *string
	AddJSON         *bool

	// delete command
	DeleteUsed  *bool
	DeleteID    *string
	DeleteForce *bool

	// export command
	ExportUsed   *bool
	ExportOut    *string
	ExportSearch *string
	ExportType   *string
	ExportRegion *string

	// migrate command
	MigrateUsed *bool

	// completion command
	CompletionUsed  *bool
	CompletionShell *string
}

// Run is the main entry point for the CLI.
func Run() {
	ctx := &CommandContext{}

	cmd := ra.NewCmd("forts")
	cmd.SetDescription("Catalog of the forts of Maharashtra")

	ctx.NonInteractive, _ = ra.NewBool("non-interactive").
		SetShort("I").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Fail instead of prompting for missing input").
		Register(cmd, ra.WithGlobal(true))

	ctx.ConfigPath, _ = ra.NewString("config").
		SetShort("c").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Path to forts.toml (default: ./forts.toml if present)").
		Register(cmd, ra.WithGlobal(true))

	registerInit(cmd, ctx)
	registerServe(cmd, ctx)
	registerList(cmd, ctx)
	registerShow(cmd, ctx)
	registerAdd(cmd, ctx)
	registerDelete(cmd, ctx)
	registerExport(cmd, ctx)
	registerMigrate(cmd, ctx)
	registerCompletion(cmd, ctx)

	cmd.ParseOrExit(os.Args[1:])

	executeCommand(ctx, cmd)
}

func executeCommand(ctx *CommandContext, rootCmd *ra.Cmd) {
	configPath := *ctx.ConfigPath
	interactive := !*ctx.NonInteractive

	switch {
	case *ctx.InitUsed:
		runInit(configPath)

	case *ctx.ServeUsed:
		runServe(configPath, *ctx.ServePort, *ctx.ServeDev, *ctx.ServeTemplates, *ctx.ServeNoOpen)

	case *ctx.ListUsed:
		runList(configPath, *ctx.ListSearch, *ctx.ListType, *ctx.ListRegion, *ctx.ListJSON)

	case *ctx.ShowUsed:
		runShow(configPath, *ctx.ShowID, *ctx.ShowJSON)

	case *ctx.AddUsed:
		runAdd(configPath, addFlags(ctx), *ctx.AddJSON, interactive)

	case *ctx.DeleteUsed:
		runDelete(configPath, *ctx.DeleteID, *ctx.DeleteForce, interactive)

	case *ctx.ExportUsed:
		runExport(configPath, *ctx.ExportOut, *ctx.ExportSearch, *ctx.ExportType, *ctx.ExportRegion)

	case *ctx.MigrateUsed:
		runMigrate(configPath)

	case *ctx.CompletionUsed:
		runCompletion(*ctx.CompletionShell, rootCmd)
	}
}
