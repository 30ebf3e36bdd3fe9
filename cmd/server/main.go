package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/logger"
	"github.com/esocad/esocad/internal/server"
	"github.com/esocad/esocad/internal/store"
	"github.com/esocad/esocad/internal/survey"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to configuration file, built-in defaults when empty"`
	Storage    string `short:"s" long:"storage" env:"STORAGE_FILE"   description:"Points snapshot file, overrides the configuration"`
	Addr       string `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on"    default:"8080"`
}

func main() {
	// .env must be in the environment before go-flags reads env defaults
	envErr := godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()
	if envErr != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	// Load Config
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}
	if opts.Storage != "" {
		cfg.Storage = opts.Storage
	}

	points := store.New()
	if cfg.Storage != "" {
		if err := points.Load(cfg.Storage); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage).Msg("Failed to load points")
		}
	}

	srvCtx, err := server.NewServerContext(cfg, survey.NewCodec(), points)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid projection settings")
	}

	handler := server.RequestLogger(srvCtx.Routes())

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("points_loaded", points.Len()).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
