package cli

import (
	"github.com/amterp/ra"

	"github.com/amterp/forts/internal/config"
)

func registerInit(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("init")
	cmd.SetDescription("Write a default forts.toml")

	ctx.InitUsed, _ = parent.RegisterCmd(cmd)
}

func runInit(configPath string) {
	path := configPath
	if path == "" {
		path = config.ConfigFileName
	}
	if err := config.WriteDefault(path); err != nil {
		Fatal(err)
	}
	PrintSuccess("Wrote %s", path)
	PrintInfo("Set %s to use Postgres instead of the local SQLite file", config.EnvDatabaseURL)
}
