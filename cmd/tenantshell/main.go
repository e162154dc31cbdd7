package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/config"
	"github.com/jask/tenantshell/internal/logging"
)

type Globals struct {
	Ctx    context.Context
	Config config.Config
}

type CLI struct {
	Env      string `help:"Dotenv file loaded before the config" default:".env" type:"path"`
	LogLevel string `name:"log-level" help:"Override log.level"`

	Run             RunCmd             `cmd:"" default:"1" help:"Start the shell"`
	ResetOnboarding ResetOnboardingCmd `cmd:"" help:"Forget that onboarding was completed"`
	Plugins         PluginsCmd         `cmd:"" help:"List plugin manifests, their state and rejected files"`
	Routes          RoutesCmd          `cmd:"" help:"Print the authenticated route table"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("tenantshell"),
		kong.Description("Multi-tenant terminal shell."),
		kong.UsageOnError(),
	)

	if err := godotenv.Load(cli.Env); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}

	err = kctx.Run(&Globals{Ctx: context.Background(), Config: cfg})
	kctx.FatalIfErrorf(err)
}

// newLogger builds the process logger. The TUI owns the terminal, so the
// run command logs to a file; one-shot commands log to stderr.
func newLogger(cfg config.Config, toFile bool) (zerolog.Logger, func(), error) {
	opts := logging.Options{Level: cfg.Log.Level, NoColor: cfg.Log.NoColor}
	if toFile {
		opts.File = cfg.Log.File
	}
	logger, closer, err := logging.New(logging.Resolve(logging.ProfileRuntime, opts))
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("logger: %w", err)
	}
	return logger, func() { _ = closer.Close() }, nil
}
