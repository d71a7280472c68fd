package main

import (
	"os"

	"github.com/brettbedarf/datanode/adapters"
	"github.com/brettbedarf/datanode/config"
	"github.com/brettbedarf/datanode/internal/util"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger := util.GetLogger("main")
		logger.Fatal().Err(err).Msg("Command failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "datanode",
		Usage: "Inspects and edits local files and HTTP resources through one interface",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Value:   config.InfoVerbose,
				Usage:   "Log verbosity level between 1 (error) and 5 (trace)",
				EnvVars: []string{"DATANODE_VERBOSE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path of a YAML or JSON config override file",
				EnvVars: []string{"DATANODE_CONFIG"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "stat",
				Usage:     "Prints what a location designates",
				ArgsUsage: "location",
				Action:    statAction,
			},
			{
				Name:      "cat",
				Usage:     "Writes the content of a location to stdout",
				ArgsUsage: "location",
				Action:    catAction,
			},
			{
				Name:      "put",
				Usage:     "Replaces the content of a location with stdin or a local file",
				ArgsUsage: "location [source]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "parents", Aliases: []string{"p"}, Usage: "Create missing parent directories"},
				},
				Action: putAction,
			},
			{
				Name:      "ls",
				Usage:     "Lists the direct children of a location",
				ArgsUsage: "location",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "match", Aliases: []string{"m"}, Usage: "Only list names matching a glob"},
				},
				Action: lsAction,
			},
			{
				Name:      "tree",
				Usage:     "Lists all descendants of a location",
				ArgsUsage: "location",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "files", Aliases: []string{"f"}, Usage: "Only list files"},
				},
				Action: treeAction,
			},
			{
				Name:      "find",
				Usage:     "Lists descendants whose relative path matches a glob (supports **)",
				ArgsUsage: "location pattern",
				Action:    findAction,
			},
			{
				Name:      "mkdir",
				Usage:     "Creates a directory and its parents",
				ArgsUsage: "location...",
				Action:    mkdirAction,
			},
			{
				Name:      "touch",
				Usage:     "Creates empty files if absent",
				ArgsUsage: "location...",
				Action:    touchAction,
			},
			{
				Name:      "rm",
				Usage:     "Removes locations recursively",
				ArgsUsage: "location...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "children", Usage: "Only remove the content of the location"},
				},
				Action: rmAction,
			},
		},
		Suggest: true,
	}
}

// setup initializes logging and registers the built-in node types from the
// effective configuration.
func setup(c *cli.Context) error {
	override := &config.ConfigOverride{}
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfigOverrideFile(path)
		if err != nil {
			return errors.Wrapf(err, "couldn't load config file %s", path)
		}
		override = loaded
	}
	if c.IsSet("verbose") || override.LogLvl == nil {
		override.LogLvl = util.Pointer(c.Int("verbose"))
	}
	cfg := config.NewConfig(override)

	util.InitializeLogger(cfg.LogLvl, c.App.ErrWriter)
	logger := util.GetLogger("main")
	logger.Debug().
		Str("config", c.String("config")).
		Str("method", cfg.HTTPMethod).
		Dur("timeout", cfg.HTTPTimeout).
		Msg("Configuration loaded")

	adapters.RegisterBuiltins(cfg)
	return nil
}
