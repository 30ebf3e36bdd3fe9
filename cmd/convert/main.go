package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/logger"
	"github.com/esocad/esocad/internal/processor"
	"github.com/esocad/esocad/internal/survey"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input      string `short:"i" long:"in"        description:"Input point list (name Y X [Z] per line). Reads from stdin if empty"`
	Output     string `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	Format     string `short:"f" long:"format"    description:"Output format" choice:"txt" choice:"kml" choice:"geojson" choice:"yaml" default:"txt"`
	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE" description:"Configuration file with projection defaults"`
	Width      int    `short:"w" long:"width"     description:"Grid zone width in degrees" choice:"3" choice:"6"`
	Meridian   string `short:"m" long:"meridian"  description:"Central meridian in degrees"`
	AutoZone   bool   `short:"a" long:"auto-zone" description:"Derive the central meridian from each longitude"`
	Datum      string `short:"d" long:"datum"     description:"Grid datum" choice:"ITRF96" choice:"ED50"`
	South      bool   `short:"s" long:"south"     description:"Input northings carry the southern false northing"`
	Minify     bool   `long:"minify"              description:"Minify KML and GeoJSON output"`
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

	proj, err := projection(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid projection settings")
	}

	// Read Input
	var inputData []byte
	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
	} else {
		inputData, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read input")
	}

	codec := survey.NewCodec()
	res := codec.Parse(string(inputData), proj)
	if len(res.Points) == 0 {
		log.Fatal().Int("skipped", res.Skipped).Msg("No valid records found")
	}

	outputData, err := encode(codec, opts, res.Points, proj)
	if err != nil {
		log.Fatal().Err(err).Str("format", opts.Format).Msg("Failed to encode points")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
		}
	} else if _, err := os.Stdout.Write(outputData); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}

	log.Info().
		Int("points", len(res.Points)).
		Int("skipped", res.Skipped).
		Str("format", opts.Format).
		Str("system", proj.System()).
		Msg("Conversion finished")
}

// projection layers the command line flags over the configuration file.
func projection(opts Options) (geodesy.ProjectionConfig, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			return geodesy.ProjectionConfig{}, err
		}
	}

	p := cfg.Projection
	if opts.Width != 0 {
		p.Width = opts.Width
	}
	if opts.Meridian != "" {
		m, err := strconv.ParseFloat(opts.Meridian, 64)
		if err != nil {
			return geodesy.ProjectionConfig{}, fmt.Errorf("meridian: %w", err)
		}
		p.Meridian = &m
	}
	if opts.Datum != "" {
		d, err := geodesy.ParseDatum(opts.Datum)
		if err != nil {
			return geodesy.ProjectionConfig{}, err
		}
		p.Datum = d
	}
	p.AutoZone = p.AutoZone || opts.AutoZone
	p.South = p.South || opts.South

	return p.Resolve()
}

func encode(codec *survey.Codec, opts Options, points []survey.Point, proj geodesy.ProjectionConfig) ([]byte, error) {
	if opts.Format == "yaml" {
		return yaml.Marshal(points)
	}

	f, err := survey.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	doc, err := codec.Encode(f, points, proj)
	if err != nil || !opts.Minify {
		return doc, err
	}
	return processor.Minify(processor.NewMinifier(), f, doc)
}
