package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/compliance"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	jurisdiction string
	json         bool // print the report as JSON
	interactive  bool // browse findings in a terminal UI
	strict       bool // fail when any check fails
}

// checkCommand creates the check command for validating a layout file.
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{}

	cmd := &cobra.Command{
		Use:   "check [layout.json]",
		Short: "Check a layout against GMP rules",
		Long: `Check evaluates every checkable rule of a jurisdiction against a layout or
generation result file and prints the report. Rules that cannot be verified
from the geometry alone are listed by "gmplayout rules".`,
		Example: `  gmplayout check sterile.json --jurisdiction US
  gmplayout check sterile.json --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, res, err := readLayoutArg(args[0])
			if err != nil {
				return err
			}
			zone := opts.jurisdiction
			if zone == "" && res != nil && res.Compliance != nil {
				zone = string(res.Compliance.Jurisdiction)
			}

			cfg, runner, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			if zone == "" {
				zone = cfg.Compliance.Jurisdiction
			}

			rep, cached, err := runner.CheckWithCacheInfo(ctx, l, zone)
			if err != nil {
				return err
			}

			switch {
			case opts.json:
				if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			case opts.interactive:
				if err := browseFindings(l.Name, rep); err != nil {
					return err
				}
			default:
				printReport(rep, cached)
			}

			if opts.strict && !rep.Compliant() {
				return fmt.Errorf("%w: %s", errNonCompliant, rep.Summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.jurisdiction, "jurisdiction", "j", "", "regulatory jurisdiction: EU, US, WHO, PICS, GLOBAL")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse findings interactively")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when any check fails")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")

	return cmd
}

// browseFindings runs the findings browser until the user quits.
func browseFindings(title string, rep *compliance.Report) error {
	_, err := tea.NewProgram(NewFindingsModel(title, rep), tea.WithAltScreen()).Run()
	return err
}
