package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/config"
	"github.com/matzehuels/gmplayout/pkg/graph"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
)

// errNonCompliant is returned by --strict runs whose report has failures.
var errNonCompliant = errors.New("layout is not compliant")

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	requestFile string   // JSON request file; flags override its fields
	facility    string   // template id or facility type
	rooms       []string // room type ids
	describe    string   // free-text description for the interpreter
	name        string
	style       string
	width       float64
	height      float64
	seed        uint64
	jurisdict   string
	batchSize   float64
	throughput  float64
	ceiling     string
	refresh     bool
	save        bool // persist the layout in the configured store
	strict      bool // fail when the compliance report has failures
	render      renderOpts
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var formatsStr string
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a facility layout",
		Long: `Generate assembles rooms from a template, a list of room types or a
description, infers the relationships between them, positions them on the
canvas and checks the result against the jurisdiction's rules.

Without --output the result is written to stdout as JSON.`,
		Example: `  gmplayout generate --facility sterile -o sterile.json
  gmplayout generate --rooms dispensing,granulation,compression,coating --style linear
  gmplayout generate --describe "small QC lab with microbiology" -f json,svg -o qc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr, formatJSON)
			if err != nil {
				return err
			}
			opts.render.formats = formats
			return c.runGenerate(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.requestFile, "request", "", "JSON request file")
	f.StringVar(&opts.facility, "facility", "", "facility template: oral-solid, sterile, qc")
	f.StringSliceVar(&opts.rooms, "rooms", nil, "room type ids (comma-separated)")
	f.StringVar(&opts.describe, "describe", "", "free-text facility description (needs an interpreter API key)")
	f.StringVar(&opts.name, "name", "", "layout name")
	f.StringVar(&opts.style, "style", "", "layout style: "+strings.Join(pipeline.Styles(), ", "))
	f.Float64Var(&opts.width, "width", 0, "canvas width")
	f.Float64Var(&opts.height, "height", 0, "canvas height")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed")
	f.StringVarP(&opts.jurisdict, "jurisdiction", "j", "", "regulatory jurisdiction: EU, US, WHO, PICS")
	f.Float64Var(&opts.batchSize, "batch-size", 0, "batch size in kg")
	f.Float64Var(&opts.throughput, "throughput", 0, "throughput in units per day")
	f.StringVar(&opts.ceiling, "ceiling", "", "strictest cleanroom class allowed (A-D)")
	f.BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	f.BoolVar(&opts.save, "save", false, "save the layout in the configured store")
	f.BoolVar(&opts.strict, "strict", false, "exit with an error when compliance checks fail")
	opts.render.addFlags(cmd, &formatsStr)

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	toStdout := opts.render.output == ""
	if toStdout && (len(opts.render.formats) > 1 || opts.render.formats[0] != formatJSON) {
		return fmt.Errorf("--output is required for %s output", strings.Join(opts.render.formats, ","))
	}

	cfg, runner, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	req, err := buildRequest(cfg, cmd, opts)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	var spinner *Spinner
	if !c.verbose && !toStdout {
		spinner = newSpinnerWithContext(ctx, "Generating layout...")
		spinner.Start()
	}
	res, err := runner.Generate(ctx, req)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Generation failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %s (%d rooms)", res.Layout.Name, res.Layout.RoomCount()))

	if opts.save {
		if err := saveLayout(ctx, cfg, res); err != nil {
			return err
		}
	}

	if toStdout {
		data, err := graph.MarshalResult(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		paths, err := writeOutputs(ctx, res.Layout, res, &opts.render)
		if err != nil {
			return err
		}
		printResult(res)
		for _, p := range paths {
			printFile(p)
		}
		for i, f := range opts.render.formats {
			if f == formatJSON {
				printNextStep("Browse findings", "gmplayout check -i "+paths[i])
			}
		}
	}

	if opts.strict && res.Compliance != nil && !res.Compliance.Compliant() {
		return fmt.Errorf("%w: %s", errNonCompliant, res.Compliance.Summary)
	}
	return nil
}

// buildRequest merges the configured defaults, the request file and the
// flags that were set explicitly, in that order.
func buildRequest(cfg *config.Config, cmd *cobra.Command, opts *generateOpts) (pipeline.Request, error) {
	req := cfg.Request()
	if opts.requestFile != "" {
		data, err := os.ReadFile(opts.requestFile)
		if err != nil {
			return req, fmt.Errorf("read request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("decode request %s: %w", opts.requestFile, err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("facility") {
		req.FacilityType = opts.facility
	}
	if changed("rooms") {
		req.RoomTypes = opts.rooms
	}
	if changed("describe") {
		req.Description = opts.describe
	}
	if changed("name") {
		req.Name = opts.name
	}
	if changed("style") {
		req.Style = opts.style
	}
	if changed("width") {
		req.Width = opts.width
	}
	if changed("height") {
		req.Height = opts.height
	}
	if changed("seed") {
		req.Seed = opts.seed
	}
	if changed("jurisdiction") {
		req.Jurisdiction = opts.jurisdict
	}
	if changed("batch-size") {
		req.BatchSize = opts.batchSize
	}
	if changed("throughput") {
		req.Throughput = opts.throughput
	}
	if changed("ceiling") {
		req.CleanroomCeiling = opts.ceiling
	}
	req.Refresh = opts.refresh
	return req, nil
}

func saveLayout(ctx context.Context, cfg *config.Config, res *pipeline.Result) error {
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(ctx, res.Layout); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	loggerFromContext(ctx).Info("Saved layout", "id", res.Layout.ID)
	return nil
}

// printResult prints a short summary of a generation.
func printResult(res *pipeline.Result) {
	printSuccess("Generated %s", StyleHighlight.Render(res.Layout.Name))
	printStats(res.Layout.RoomCount(), res.Layout.RelationshipCount(), res.CacheInfo.ResultHit)
	printKeyValue("ID", res.Layout.ID)
	printKeyValue("Style", res.Style)
	if res.Template != "" {
		printKeyValue("Template", res.Template)
	}
	if rep := res.Compliance; rep != nil {
		printKeyValue("Compliance", fmt.Sprintf("%d/100 %s (%d/%d passed)", rep.Score, rep.Jurisdiction, rep.Passed, rep.TotalChecks))
	}
	printKeyValue("Flow", fmt.Sprintf("%.2f efficiency, %.2f contamination risk", res.Metrics.FlowEfficiency, res.Metrics.ContaminationRisk))
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	for _, s := range res.Suggestions {
		printDetail("%s", s)
	}
}
