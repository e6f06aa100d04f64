package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	_ "github.com/sentinel/api/docs" // Swagger docs
)

var (
	version = "0.1.0"
	commit  = "none"
)

// @title						Sentinel Local API
// @version					0.1.0
// @description				Marketing automation API for local service businesses: review replies, ads reporting and an AI assistant.
// @host						localhost:8080
// @BasePath					/
// @schemes					http
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	app := &cli.App{
		Name:    "sentinel",
		Usage:   "Sentinel Local marketing API",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			// config.Load reads CONFIG_FILE; the flag is a convenience over it
			if path := c.String("config"); path != "" {
				return os.Setenv("CONFIG_FILE", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
			pingCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
