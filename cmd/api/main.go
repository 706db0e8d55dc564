package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"planup/internal/app"
	"planup/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "путь к config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	application := app.New(cfg)
	if err := application.Init(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "инициализация: %v\n", err)
		os.Exit(1)
	}

	os.Exit(application.Run(context.Background()))
}
