package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/graph"
	"github.com/matzehuels/gmplayout/pkg/store"
)

// storeCommand creates the store command managing saved layouts.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved layouts",
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storeMatchCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) storeListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved layouts, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if list == nil {
						list = []store.Summary{}
					}
					return writeJSON(cmd.OutOrStdout(), list)
				}
				if len(list) == 0 {
					printInfo("No saved layouts")
					return nil
				}
				t := newTable("ID", "NAME", "ROOMS", "RELATIONSHIPS", "UPDATED")
				for _, s := range list {
					t.Row(s.ID, s.Name, fmt.Sprint(s.Rooms), fmt.Sprint(s.Relationships), formatRelativeTime(s.UpdatedAt))
				}
				fmt.Println(t.Render())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Write a saved layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				l, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					return graph.WriteLayout(l, cmd.OutOrStdout())
				}
				if err := graph.WriteLayoutFile(l, output); err != nil {
					return err
				}
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put [layout.json]",
		Short: "Save a layout or generation result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, err := readLayoutArg(args[0])
			if err != nil {
				return err
			}
			if l.ID == "" {
				l.ID = facility.NewID()
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Save(cmd.Context(), l); err != nil {
					return err
				}
				printSuccess("Saved %s", StyleHighlight.Render(l.ID))
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) storeMatchCommand() *cobra.Command {
	var (
		room, neighbor store.RoomPattern
		relation       string
		class          string
		neighborClass  string
		category       string
		neighborCat    string
		asJSON         bool
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find rooms or room pairs across saved layouts",
		Long: `Match searches every saved layout for rooms matching a pattern. With any
--neighbor-* flag it searches for pairs joined by a relationship instead.`,
		Example: `  gmplayout store match --class A
  gmplayout store match --type filling --relation ADJACENT_TO --neighbor-name airlock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := store.Pattern{Room: room, Relation: facility.RelationType(relation)}
			if relation != "" && !p.Relation.Valid() {
				return fmt.Errorf("invalid relation %q", relation)
			}
			var err error
			if p.Room.Class, err = parseClassFlag(class); err != nil {
				return err
			}
			if neighbor.Class, err = parseClassFlag(neighborClass); err != nil {
				return err
			}
			if p.Room.Category, err = parseCategoryFlag(category); err != nil {
				return err
			}
			if neighbor.Category, err = parseCategoryFlag(neighborCat); err != nil {
				return err
			}
			if neighbor != (store.RoomPattern{}) || relation != "" {
				p.Neighbor = &neighbor
			}

			return c.withStore(cmd.Context(), func(st store.Store) error {
				matches, err := st.Match(cmd.Context(), p)
				if err != nil {
					return err
				}
				if asJSON {
					if matches == nil {
						matches = []store.Match{}
					}
					return writeJSON(cmd.OutOrStdout(), matches)
				}
				if len(matches) == 0 {
					printInfo("No matches")
					return nil
				}
				t := newTable("LAYOUT", "ROOM", "NEIGHBOR")
				for _, m := range matches {
					t.Row(m.LayoutID, m.RoomID, m.NeighborID)
				}
				fmt.Println(t.Render())
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&room.Type, "type", "", "room type id")
	f.StringVar(&category, "category", "", "room category")
	f.StringVar(&class, "class", "", "cleanroom class")
	f.StringVar(&room.Name, "name", "", "substring of the room name or type")
	f.StringVar(&relation, "relation", "", "relationship type joining room and neighbor")
	f.StringVar(&neighbor.Type, "neighbor-type", "", "neighbor room type id")
	f.StringVar(&neighborCat, "neighbor-category", "", "neighbor category")
	f.StringVar(&neighborClass, "neighbor-class", "", "neighbor cleanroom class")
	f.StringVar(&neighbor.Name, "neighbor-name", "", "substring of the neighbor name or type")
	f.BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func parseClassFlag(s string) (facility.CleanroomClass, error) {
	if s == "" {
		return facility.ClassNone, nil
	}
	class, ok := facility.ParseClass(s)
	if !ok {
		return "", fmt.Errorf("invalid cleanroom class %q", s)
	}
	return class, nil
}

func parseCategoryFlag(s string) (facility.Category, error) {
	if s == "" {
		return "", nil
	}
	cat, ok := facility.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return cat, nil
}

// formatRelativeTime formats t relative to now, falling back to a date
// after a week.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
