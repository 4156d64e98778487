package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/catalog"
	"github.com/matzehuels/gmplayout/pkg/compliance"
	"github.com/matzehuels/gmplayout/pkg/facility"
)

// catalogCommand creates the catalog command listing room types and
// templates.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		templates bool
		category  string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "catalog [template]",
		Short: "List room types and facility templates",
		Long: `Catalog lists the room types known to the generator with their category,
default cleanroom class and footprint. With --templates it lists the facility
templates instead; naming a template shows its rooms in process-line order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, runner, err := c.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()
			cat := runner.Catalog

			if len(args) == 1 {
				tpl, ok := cat.TemplateForFacility(args[0])
				if !ok {
					return fmt.Errorf("unknown template %q", args[0])
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), tpl)
				}
				printTemplate(cat, tpl)
				return nil
			}

			if templates {
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), cat.Templates())
				}
				fmt.Println(templateTable(cat))
				return nil
			}

			types := cat.RoomTypes()
			if category != "" {
				want, ok := facility.ParseCategory(category)
				if !ok {
					return fmt.Errorf("invalid category %q", category)
				}
				filtered := types[:0]
				for _, t := range types {
					if t.Category == want {
						filtered = append(filtered, t)
					}
				}
				types = filtered
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), types)
			}
			fmt.Println(roomTypeTable(types))
			return nil
		},
	}

	cmd.Flags().BoolVar(&templates, "templates", false, "list facility templates")
	cmd.Flags().StringVar(&category, "category", "", "only list room types of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return styleCell
		})
}

func roomTypeTable(types []catalog.RoomType) string {
	t := newTable("ID", "NAME", "CATEGORY", "CLASS", "SIZE")
	for _, rt := range types {
		class := string(rt.Class)
		if class == "" {
			class = "-"
		}
		t.Row(rt.ID, rt.Name, string(rt.Category), class, fmt.Sprintf("%.0f×%.0f", rt.Width, rt.Height))
	}
	return t.Render()
}

func templateTable(cat *catalog.Catalog) string {
	t := newTable("ID", "NAME", "FACILITY", "ROOMS", "RELATIONSHIPS")
	for _, tpl := range cat.Templates() {
		t.Row(tpl.ID, tpl.Name, tpl.FacilityType, fmt.Sprint(len(tpl.Rooms)), fmt.Sprint(len(tpl.Relationships)))
	}
	return t.Render()
}

// printTemplate prints a template with its process line and relationships.
func printTemplate(cat *catalog.Catalog, tpl catalog.Template) {
	fmt.Println(StyleTitle.Render(tpl.Name) + " " + StyleDim.Render("("+tpl.ID+")"))
	printKeyValue("Facility", tpl.FacilityType)
	printKeyValue("Rooms", fmt.Sprint(len(tpl.Rooms)))
	if line := cat.ProcessLine(tpl.Rooms); len(line) > 0 {
		printKeyValue("Line", strings.Join(line, " "+iconArrow+" "))
	}
	if len(tpl.Relationships) == 0 {
		return
	}
	t := newTable("TYPE", "SOURCE", "TARGET", "PRIORITY", "REASON")
	for _, rel := range tpl.Relationships {
		t.Row(string(rel.Type), rel.Source, rel.Target, fmt.Sprint(rel.Priority), rel.Reason)
	}
	fmt.Println(t.Render())
}

// rulesCommand creates the rules command listing the rulebook.
func (c *CLI) rulesCommand() *cobra.Command {
	var (
		jurisdiction string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the regulatory rulebook",
		Long: `Rules lists the rules applied to a jurisdiction. Checkable rules are
evaluated against layouts; reference rules are listed for completeness but
need evidence beyond the floor plan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, runner, err := c.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()
			if jurisdiction == "" {
				jurisdiction = cfg.Compliance.Jurisdiction
			}
			zone, err := compliance.ParseJurisdiction(jurisdiction)
			if err != nil {
				return err
			}
			book := runner.Engine.Rulebook()
			checkable, reference := book.Applicable(zone), book.Reference(zone)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"jurisdiction": zone,
					"checkable":    checkable,
					"reference":    reference,
				})
			}
			fmt.Println(StyleTitle.Render(fmt.Sprintf("%s: %d checkable, %d reference", zone, len(checkable), len(reference))))
			fmt.Println(ruleTable(checkable))
			if len(reference) > 0 {
				fmt.Println(StyleDim.Render("Reference only"))
				fmt.Println(ruleTable(reference))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "regulatory jurisdiction: EU, US, WHO, PICS, GLOBAL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func ruleTable(rules []compliance.Rule) string {
	t := newTable("RULE", "SEVERITY", "CITATION", "REQUIREMENT")
	for _, r := range rules {
		t.Row(r.ID, severityStyle(r.Severity).Render(string(r.Severity)), r.Citation(), truncate(r.Requirement, 60))
	}
	return t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
