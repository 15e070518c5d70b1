package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amterp/ra"
	"go.uber.org/zap"

	"github.com/amterp/forts/internal/config"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/prompt"
	"github.com/amterp/forts/internal/store"
)

const completionTimeout = 2 * time.Second

// completionCtx provides lightweight store access for shell completion.
// Completion functions run during ParseOrExit, before NewApp() is called,
// so we can't use the full App. The store is opened without migrating so
// completing never creates a database.
type completionCtx struct {
	once  sync.Once
	store store.FortStore
	err   error
}

var compCtx completionCtx

func initCompletionCtx() {
	compCtx.once.Do(func() {
		cfg, err := config.Load(configFromArgs(os.Args))
		if err != nil {
			compCtx.err = err
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
		defer cancel()
		compCtx.store, compCtx.err = store.Open(ctx, store.Options{
			Driver: cfg.Store.Driver,
			DSN:    cfg.Store.DSN,
			Path:   cfg.Store.Path,
		}, false, zap.NewNop())
	})
}

// completeForts returns fort IDs matching the given prefix.
func completeForts(toComplete string) ([]string, ra.CompletionDirective) {
	initCompletionCtx()
	if compCtx.err != nil {
		return nil, ra.CompletionDirectiveNoFileComp
	}

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	forts, err := compCtx.store.List(ctx)
	if err != nil {
		return nil, ra.CompletionDirectiveNoFileComp
	}

	ids := make([]string, 0, len(forts))
	for _, f := range forts {
		ids = append(ids, f.ID)
	}
	return matchPrefix(ids, toComplete), ra.CompletionDirectiveNoFileComp
}

func completeTypes(toComplete string) ([]string, ra.CompletionDirective) {
	return matchPrefix(prompt.Strings(model.AllFortTypes()), toComplete), ra.CompletionDirectiveNoFileComp
}

func completeRegions(toComplete string) ([]string, ra.CompletionDirective) {
	return matchPrefix(prompt.Strings(model.AllRegions()), toComplete), ra.CompletionDirectiveNoFileComp
}

func completeDifficulties(toComplete string) ([]string, ra.CompletionDirective) {
	return matchPrefix(prompt.Strings(model.AllTrekDifficulties()), toComplete), ra.CompletionDirectiveNoFileComp
}

// matchPrefix filters candidates case-insensitively, since enum values
// such as "Hill Fort" are usually typed in lower case.
func matchPrefix(candidates []string, prefix string) []string {
	prefix = strings.ToLower(prefix)
	var result []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			result = append(result, c)
		}
	}
	return result
}

// configFromArgs scans the argument list for an explicit -c/--config flag value.
func configFromArgs(args []string) string {
	for i, arg := range args {
		// --config=value or -c=value (skip empty values so the default applies)
		if strings.HasPrefix(arg, "--config=") {
			if v := strings.TrimPrefix(arg, "--config="); v != "" {
				return v
			}
		}
		if strings.HasPrefix(arg, "-c=") {
			if v := strings.TrimPrefix(arg, "-c="); v != "" {
				return v
			}
		}
		// --config value or -c value
		if (arg == "--config" || arg == "-c") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// registerCompletion adds the "forts completion <shell>" command.
func registerCompletion(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("completion")
	cmd.SetDescription("Output shell completion script")

	ctx.CompletionShell, _ = ra.NewString("shell").
		SetUsage("Shell type").
		SetEnumConstraint([]string{"bash", "zsh"}).
		Register(cmd)

	ctx.CompletionUsed, _ = parent.RegisterCmd(cmd)
}

// runCompletion outputs the shell completion script to stdout.
func runCompletion(shell string, rootCmd *ra.Cmd) {
	var err error
	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(os.Stdout)
	default:
		Fatal(fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell))
	}
	if err != nil {
		Fatal(fmt.Errorf("failed to generate completion script: %w", err))
	}
}
