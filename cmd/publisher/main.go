// Command publisher builds a standalone HTML application from a UPDL
// flow export without running the publish server.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/publish"
	"github.com/universo-platformo/updl-engine/internal/template"
	"github.com/universo-platformo/updl-engine/internal/updl"
)

func main() {
	in := flag.String("in", "", "path to the UPDL flow JSON export")
	out := flag.String("out", "app.html", "path for the generated HTML file")
	templateID := flag.String("template", "quiz", "template to build with")
	markerType := flag.String("marker", "preset", "AR marker type (preset, pattern, barcode)")
	markerValue := flag.String("marker-value", "hiro", "AR marker value")
	displayType := flag.String("display", "marker", "AR display type (marker, wallpaper)")
	projectName := flag.String("name", "", "project name shown in the document title")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *in == "" {
		logger.Fatal("missing -in: path to a UPDL flow JSON export is required")
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		logger.WithError(err).Fatal("failed to read flow export")
	}

	registry := publish.DefaultRegistry(logger)
	processor := updl.NewProcessor(logger)
	svc := publish.NewService(registry, processor, nil, logger)

	opts := template.BuildOptions{
		TemplateID:    *templateID,
		ProjectName:   *projectName,
		MarkerType:    *markerType,
		MarkerValue:   *markerValue,
		ARDisplayType: *displayType,
	}

	result := svc.Build(raw, opts)
	if !result.Success {
		logger.WithField("template", *templateID).Fatalf("build failed: %s", result.Error)
	}

	if err := os.WriteFile(*out, []byte(result.HTML), 0o644); err != nil {
		logger.WithError(err).Fatal("failed to write output file")
	}

	logger.WithFields(logrus.Fields{
		"out":      *out,
		"template": *templateID,
		"bytes":    len(result.HTML),
	}).Info("application generated")
}
