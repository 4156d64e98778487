package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
	"github.com/matzehuels/gmplayout/pkg/graph"
)

// placeOpts holds the command-line flags for the place command.
type placeOpts struct {
	id         string
	roomType   string
	name       string
	width      float64
	height     float64
	class      string
	category   string
	adjacentTo []string
	flowFrom   []string // material flows into the new room
	flowTo     []string // material flows out of the new room
	separate   []string // rooms the new room must stay away from
	output     string
	inPlace    bool
}

// placeCommand creates the place command for adding a room to a layout.
func (c *CLI) placeCommand() *cobra.Command {
	opts := placeOpts{}

	cmd := &cobra.Command{
		Use:   "place [layout.json]",
		Short: "Add a room to an existing layout",
		Long: `Place adds one room and its relationships to a layout and puts the room at
the best scoring free position. Existing rooms do not move.`,
		Example: `  gmplayout place sterile.json --id office-2 --type office --adjacent-to gowning -o sterile-2.json
  gmplayout place plant.json --id store-2 --type raw-material-store --flow-to dispensing --in-place`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.inPlace && opts.output != "" {
				return fmt.Errorf("--in-place and --output are mutually exclusive")
			}
			l, _, err := readLayoutArg(args[0])
			if err != nil {
				return err
			}
			room, err := opts.room()
			if err != nil {
				return err
			}

			_, runner, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			updated, p, err := runner.PlaceRoom(ctx, l, room, opts.relationships())
			if err != nil {
				return err
			}

			out := opts.output
			if opts.inPlace {
				out = args[0]
			}
			if out == "" {
				return graph.WriteLayout(updated, cmd.OutOrStdout())
			}
			if err := graph.WriteLayoutFile(updated, out); err != nil {
				return err
			}
			printSuccess("Placed %s at (%.0f, %.0f)", StyleHighlight.Render(room.ID), p.Position.X, p.Position.Y)
			printDetail("score %.3f · adjacency %.2f · flow %.2f · zone %.2f · %d candidates",
				p.Score.Total, p.Score.Adjacency, p.Score.Flow, p.Score.Zone, p.Candidates)
			printFile(out)
			printNextStep("Check compliance", "gmplayout check "+out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.id, "id", "", "room id (required)")
	f.StringVar(&opts.roomType, "type", "", "catalog room type; fills size, category and class")
	f.StringVar(&opts.name, "name", "", "room name")
	f.Float64Var(&opts.width, "width", 0, "room width (defaults to the catalog size)")
	f.Float64Var(&opts.height, "height", 0, "room height (defaults to the catalog size)")
	f.StringVar(&opts.class, "class", "", "cleanroom class: A, B, C, D, CNC")
	f.StringVar(&opts.category, "category", "", "room category, e.g. Production, Support")
	f.StringSliceVar(&opts.adjacentTo, "adjacent-to", nil, "rooms the new room should adjoin")
	f.StringSliceVar(&opts.flowFrom, "flow-from", nil, "rooms with material flowing into the new room")
	f.StringSliceVar(&opts.flowTo, "flow-to", nil, "rooms receiving material from the new room")
	f.StringSliceVar(&opts.separate, "prohibited-near", nil, "rooms the new room must be kept away from")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.BoolVar(&opts.inPlace, "in-place", false, "overwrite the input file")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// room builds the room to place from the flags.
func (o *placeOpts) room() (*facility.Room, error) {
	r := &facility.Room{
		ID:   o.id,
		Name: o.name,
		Type: o.roomType,
		Size: geom.Size{W: o.width, H: o.height},
	}
	if r.Name == "" && r.Type == "" {
		r.Name = o.id
	}
	if o.class != "" {
		class, ok := facility.ParseClass(o.class)
		if !ok {
			return nil, fmt.Errorf("invalid cleanroom class %q", o.class)
		}
		r.Class = class
	}
	if o.category != "" {
		cat, ok := facility.ParseCategory(o.category)
		if !ok {
			return nil, fmt.Errorf("invalid category %q", o.category)
		}
		r.Category = cat
	}
	return r, nil
}

// relationships converts the relationship flags, all anchored at the new
// room.
func (o *placeOpts) relationships() []facility.Relationship {
	var rels []facility.Relationship
	add := func(t facility.RelationType, source, target, reason string) {
		rel := facility.Relationship{Type: t, Source: source, Target: target, Reason: reason}
		if t.IsFlow() {
			rel.FlowDirection = facility.Unidirectional
		}
		rels = append(rels, rel)
	}
	for _, id := range o.adjacentTo {
		add(facility.AdjacentTo, o.id, id, "requested adjacency")
	}
	for _, id := range o.flowFrom {
		add(facility.MaterialFlow, id, o.id, "requested material flow")
	}
	for _, id := range o.flowTo {
		add(facility.MaterialFlow, o.id, id, "requested material flow")
	}
	for _, id := range o.separate {
		add(facility.ProhibitedNear, o.id, id, "requested separation")
	}
	return rels
}
