package main

import (
	"context"
	"log"

	"github.com/s-fanou/feed/internal/client/cli"
	"github.com/s-fanou/feed/internal/client/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cfg)
	app.Run(context.Background())
}
