package main

import (
	"os"

	"nippo/cmd/nippoctl/root"
	"nippo/internal/backend"
	"nippo/internal/cli"
	applog "nippo/internal/log"
)

func main() {
	app := root.App{
		Open: func() (*backend.Backend, error) {
			cfg, _, err := cli.Bootstrap(applog.ComponentCLI, os.Stderr)
			if err != nil {
				return nil, err
			}
			return backend.Open(cfg)
		},
	}
	os.Exit(root.Execute(app))
}
