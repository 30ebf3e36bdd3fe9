package main

import (
	"os"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/logger"
	"github.com/esocad/esocad/internal/processor"
	"github.com/esocad/esocad/internal/survey"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Limit      []string `short:"l" long:"limit"   env:"LIMIT_FILES" description:"Limit processing to specific input files from the configuration"`
	OutDir     string   `short:"o" long:"out-dir" env:"OUT_DIR"     description:"Output directory, overrides the configuration"`
	Minify     bool     `short:"m" long:"minify"                    description:"Minify KML and GeoJSON output"`
	Force      bool     `short:"f" long:"force"                     description:"Force overwrite of existing files"`

	Args struct {
		Inputs []string `positional-arg-name:"input" description:"Point files, added to the configured inputs"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.OutDir != "" {
		cfg.Export.OutDir = opts.OutDir
	}
	if opts.Minify {
		cfg.Export.Minify = true
	}

	exporter, err := processor.NewExporter(cfg, survey.NewCodec())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid export settings")
	}
	exporter.Force = opts.Force

	inputs := selectInputs(cfg.Export.Inputs, opts.Limit)
	inputs = append(inputs, opts.Args.Inputs...)

	log.Info().
		Int("inputs_total", len(cfg.Export.Inputs)+len(opts.Args.Inputs)).
		Int("inputs_queued", len(inputs)).
		Str("out_dir", exporter.OutDir).
		Bool("minify", exporter.Minify).
		Msg("Starting export")

	sum, err := exporter.Run(inputs)

	log.Info().
		Int("files", sum.Files).
		Int("failed", sum.Failed).
		Int("points", sum.Points).
		Int("skipped", sum.Skipped).
		Int("written", sum.Written).
		Msg("Export finished")

	if err != nil {
		os.Exit(1)
	}
}

// selectInputs keeps the configured inputs named in limit, in limit order.
// An empty limit keeps everything.
func selectInputs(configured, limit []string) []string {
	if len(limit) == 0 {
		return append([]string(nil), configured...)
	}

	available := make(map[string]bool, len(configured))
	for _, in := range configured {
		available[in] = true
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(limit))
	for _, name := range limit {
		if seen[name] {
			continue
		}
		seen[name] = true

		if available[name] {
			out = append(out, name)
		} else {
			log.Error().
				Str("input", name).
				Msg("File specified in --limit not found in configuration")
		}
	}
	return out
}
