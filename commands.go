package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfstamp/compositor"
	"github.com/mgmeyers/pdfstamp/pdfutils"
	"github.com/mgmeyers/pdfstamp/server"
)

type serveCmd struct {
	Addr       string  `default:":3000" env:"PDFSTAMP_ADDR" help:"Listen address"`
	Static     string  `type:"path" default:"static" env:"PDFSTAMP_STATIC_DIR" help:"Directory holding the editor front end"`
	BodyLimit  int64   `default:"52428800" env:"PDFSTAMP_BODY_LIMIT" help:"Maximum request body size in bytes"`
	PreviewDPI float64 `default:"108" env:"PDFSTAMP_PREVIEW_DPI" help:"Default DPI of page previews"`
}

func (c *serveCmd) Run(g *Globals) error {
	logger := g.logger()

	store := g.store()
	if err := store.Init(); err != nil {
		return err
	}

	srv := server.New(store, server.Config{
		StaticDir:        c.Static,
		BodyLimit:        c.BodyLimit,
		BaselineFactor:   &g.BaselineFactor,
		LineHeightFactor: g.LineHeightFactor,
		PreviewDPI:       c.PreviewDPI,
	}, logger)

	httpServer := &http.Server{
		Addr:              c.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", c.Addr).Info("server listening")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

type applyCmd struct {
	Input   string `arg:"" name:"input" type:"existingfile" help:"Path to input PDF"`
	Actions string `arg:"" name:"actions" type:"existingfile" help:"Path to a JSON array of actions"`
	Output  string `short:"o" required:"" type:"path" help:"Path of the edited PDF"`
}

func (c *applyCmd) Run(g *Globals) error {
	logger := g.logger()

	data, err := os.ReadFile(c.Actions)
	if err != nil {
		return errors.Wrap(err, "reading actions")
	}

	actions, err := compositor.DecodeActions(data)
	if err != nil {
		return err
	}

	doc, err := pdfutils.OpenDocument(c.Input)
	if err != nil {
		return err
	}

	report, err := doc.Stamp(actions, pdfutils.StampOptions{
		BaselineFactor:   &g.BaselineFactor,
		LineHeightFactor: g.LineHeightFactor,
		Images:           g.store(),
		Logger:           logger.WithField("input", c.Input),
	})
	if err != nil {
		return err
	}

	fd, err := os.Create(c.Output)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}

	if err := doc.Write(fd); err != nil {
		fd.Close()
		os.Remove(c.Output)
		return err
	}

	if err := fd.Close(); err != nil {
		return errors.Wrap(err, "closing output")
	}

	logger.WithFields(logrus.Fields{
		"output":  c.Output,
		"applied": report.Applied,
		"skipped": len(report.Skipped),
	}).Info("document saved")

	return writeJSON(g.out(), report)
}

type infoCmd struct {
	Input string `arg:"" name:"input" type:"existingfile" help:"Path to input PDF"`
}

func (c *infoCmd) Run(g *Globals) error {
	doc, err := pdfutils.OpenDocument(c.Input)
	if err != nil {
		return err
	}

	return writeJSON(g.out(), struct {
		Pages []compositor.PageGeometry `json:"pages"`
	}{doc.Geometry()})
}

type cleanupCmd struct {
	MaxAge time.Duration `default:"24h" env:"PDFSTAMP_MAX_AGE" help:"Delete uploads last modified before this age"`
}

func (c *cleanupCmd) Run(g *Globals) error {
	logger := g.logger()

	deleted, err := g.store().Cleanup(c.MaxAge)
	for _, name := range deleted {
		logger.WithField("filename", name).Info("deleted old upload")
	}
	if err != nil {
		return err
	}

	logger.WithField("count", len(deleted)).Info("cleanup finished")
	return nil
}
