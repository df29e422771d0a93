package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/msgrelay/internal/buildinfo"
	"github.com/dmitrijs2005/msgrelay/internal/server"
	"github.com/dmitrijs2005/msgrelay/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
