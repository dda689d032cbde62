package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfstamp/storage"
)

type Globals struct {
	Config    kong.ConfigFlag `short:"c" help:"Path to a YAML config file"`
	LogLevel  string          `default:"info" enum:"debug,info,warn,error" env:"PDFSTAMP_LOG_LEVEL" help:"Log level"`
	LogFormat string          `default:"text" enum:"text,json" env:"PDFSTAMP_LOG_FORMAT" help:"Log format. Supports text and json"`

	UploadDir string `type:"path" default:"uploads" env:"PDFSTAMP_UPLOAD_DIR" help:"Directory for uploaded PDFs"`
	SignDir   string `type:"path" default:"sign" env:"PDFSTAMP_SIGN_DIR" help:"Directory for saved signatures"`
	OutputDir string `type:"path" default:"public" env:"PDFSTAMP_OUTPUT_DIR" help:"Directory for edited documents"`

	BaselineFactor   float64 `default:"0.78" env:"PDFSTAMP_BASELINE_FACTOR" help:"Fraction of the font size between a text box's top edge and its baseline"`
	LineHeightFactor float64 `default:"1.15" env:"PDFSTAMP_LINE_HEIGHT" help:"Line pitch of multi-line text as a multiple of the font size"`

	stdout io.Writer `kong:"-"`
}

var cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Run the editor's HTTP server"`
	Apply   applyCmd   `cmd:"" help:"Apply a JSON action list to a PDF"`
	Info    infoCmd    `cmd:"" help:"Print the page geometry of a PDF as JSON"`
	Cleanup cleanupCmd `cmd:"" help:"Delete uploads older than a maximum age"`
}

func (g *Globals) out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

func (g *Globals) logger() *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(g.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if g.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func (g *Globals) store() *storage.Store {
	return storage.New(g.UploadDir, g.SignDir, g.OutputDir)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("pdfstamp"),
		kong.Description("Stamp text, whiteout boxes and signatures onto PDF pages."),
		kong.Configuration(yamlConfig, "pdfstamp.yaml", "~/.config/pdfstamp.yaml"),
		kong.UsageOnError(),
	)

	endIfErr(ctx.Run(&cli.Globals))
}
