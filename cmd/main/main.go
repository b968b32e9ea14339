package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/gavelbot/gavel/internal/app"
	"github.com/gavelbot/gavel/internal/config"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	project    = kingpin.Flag("project", "run one review for this repository and exit").String()
	prNumber   = kingpin.Flag("pr", "pull request number for --project").Int()
)

func main() {
	kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}

	logze.Init(logze.C().WithConsole().WithLevel(logLevel(cfg.LogLevel)))

	gavel, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "new app")
	}

	if *project != "" {
		return gavel.RunReview(ctx, *project, *prNumber)
	}

	return gavel.StartServer(ctx)
}

func logLevel(level string) string {
	switch level {
	case "debug":
		return logze.LevelDebug
	case "warn":
		return logze.LevelWarn
	case "error":
		return logze.LevelError
	default:
		return logze.LevelInfo
	}
}
