package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/graph"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
	"github.com/matzehuels/gmplayout/pkg/render"
	"github.com/matzehuels/gmplayout/pkg/render/dot"
)

// formatJSON writes the generation result (or the layout, for commands that
// have no result) as JSON.
const formatJSON = "json"

// outputFormats lists every value accepted by --format.
var outputFormats = append([]string{formatJSON}, render.Formats...)

// renderOpts holds the command-line flags for rendering.
type renderOpts struct {
	output            string   // output file, or base path for several formats
	formats           []string // json, svg, pdf, png, dot
	title             string   // plan title; defaults to the layout name
	detailed          bool     // add type and class to room labels
	hideRelationships bool     // omit relationship edges
	scale             float64  // PNG scale factor
}

func (o *renderOpts) addFlags(cmd *cobra.Command, formatsStr *string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (several formats)")
	cmd.Flags().StringVarP(formatsStr, "format", "f", "", "output format(s): "+strings.Join(outputFormats, ", ")+" (comma-separated)")
	cmd.Flags().StringVar(&o.title, "title", "", "plan title (defaults to the layout name)")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "add room type and cleanroom class to labels")
	cmd.Flags().BoolVar(&o.hideRelationships, "no-relationships", false, "omit relationship edges from drawings")
	cmd.Flags().Float64Var(&o.scale, "scale", 2, "PNG scale factor")
}

// renderCommand creates the render command for drawing saved layouts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Draw a layout as an SVG, PDF, PNG or DOT floor plan",
		Long: `Render draws a layout or generation result file as a floor-plan sketch.
Rooms are pinned to their positions and coloured by cleanroom class. PDF and
PNG output need rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr, render.FormatSVG)
			if err != nil {
				return err
			}
			opts.formats = formats
			l, _, err := readLayoutArg(args[0])
			if err != nil {
				return err
			}
			if opts.output == "" {
				opts.output = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				if len(formats) == 1 {
					opts.output += "." + formats[0]
				}
			}
			if slices.Contains(formats, formatJSON) && outputPath(opts.output, formatJSON, len(formats) > 1) == args[0] {
				return fmt.Errorf("refusing to overwrite %s; pass --output", args[0])
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			paths, err := writeOutputs(cmd.Context(), l, nil, &opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %s", l.Name))
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}
	opts.addFlags(cmd, &formatsStr)
	return cmd
}

// parseFormats splits a comma-separated --format value. An empty value
// yields def.
func parseFormats(s, def string) ([]string, error) {
	if s == "" {
		return []string{def}, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(outputFormats, f) {
			return nil, fmt.Errorf("invalid format %q: must be one of %s", f, strings.Join(outputFormats, ", "))
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// outputPath returns the file for one format. With several formats the
// output is a base path and each file gets its extension appended.
func outputPath(base, format string, multiple bool) string {
	if !multiple {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
}

// writeOutputs writes l (and res, when non-nil, for the json format) in
// every requested format and returns the written paths.
func writeOutputs(ctx context.Context, l *facility.Layout, res *pipeline.Result, opts *renderOpts) ([]string, error) {
	multiple := len(opts.formats) > 1
	var paths []string
	var svg []byte

	for _, f := range opts.formats {
		path := outputPath(opts.output, f, multiple)
		var data []byte
		var err error

		switch f {
		case formatJSON:
			if res != nil {
				data, err = graph.MarshalResult(res)
			} else {
				data, err = graph.MarshalLayout(l)
			}
		case render.FormatDOT:
			data = []byte(dot.ToDOT(l, opts.dotOptions()))
		default:
			if svg == nil {
				if svg, err = dot.RenderSVG(ctx, dot.ToDOT(l, opts.dotOptions())); err != nil {
					return nil, fmt.Errorf("render svg: %w", err)
				}
			}
			data, err = convert(svg, f, opts.scale)
		}
		if err != nil {
			return nil, err
		}
		if textFormat(f) && !bytes.HasSuffix(data, []byte("\n")) {
			data = append(data, '\n')
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (o *renderOpts) dotOptions() dot.Options {
	return dot.Options{Title: o.title, Detailed: o.detailed, HideRelationships: o.hideRelationships}
}

func convert(svg []byte, format string, scale float64) ([]byte, error) {
	switch format {
	case render.FormatPDF:
		return render.ToPDF(svg)
	case render.FormatPNG:
		return render.ToPNG(svg, scale)
	}
	return svg, nil
}

func textFormat(f string) bool {
	return f == formatJSON || f == render.FormatDOT || f == render.FormatSVG
}

// readLayoutArg reads a layout file. Both layout documents (layout JSON or
// node-link graphs) and generation results are accepted; for a result the
// layout is extracted and the result returned alongside.
func readLayoutArg(path string) (*facility.Layout, *pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		if _, ok := probe["layout"]; ok {
			res, err := graph.UnmarshalResult(data)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", path, err)
			}
			return res.Layout, res, nil
		}
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil, nil
}
