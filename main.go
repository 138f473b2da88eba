package main

import (
	"fmt"
	"log"
	"os"

	"github.com/akamensky/argparse"
	"github.com/gofiber/fiber/v2"

	"vitebridge/handlers"
	"vitebridge/pkg/bridgelib"
)

func main() {
	parser := argparse.NewParser("vitebridge", "Development bridge between a backend app server and an asset dev server")
	configPath := parser.String("c", "config", &argparse.Options{Default: "vitebridge.yml", Help: "Path to the YAML configuration"})
	listen := parser.String("l", "listen", &argparse.Options{Default: ":3100", Help: "Address to listen on"})
	assetHost := parser.String("a", "asset-host", &argparse.Options{Default: "http://localhost:5173", Help: "Asset dev server URL"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	fc, err := bridgelib.LoadFileConfig(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	cfg, err := fc.BuildConfig(bridgelib.NewConsoleSink(os.Stderr))
	if err != nil {
		log.Fatalf("building configuration: %v", err)
	}
	bridge, err := bridgelib.NewProxy(cfg)
	if err != nil {
		log.Fatalf("starting pipeline: %v", err)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(handlers.Bridge(bridge))
	app.Use(handlers.AssetHost(*assetHost))

	log.Printf("vitebridge listening on %s (backend %s, assets %s)", *listen, fc.Backend, *assetHost)
	if err := app.Listen(*listen); err != nil {
		log.Fatal(err)
	}
}
