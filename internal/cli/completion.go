package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/catalog"
	"github.com/matzehuels/gmplayout/pkg/compliance"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gmplayout.

To load completions:

Bash:
  $ source <(gmplayout completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ gmplayout completion bash > /etc/bash_completion.d/gmplayout
  # macOS:
  $ gmplayout completion bash > $(brew --prefix)/etc/bash_completion.d/gmplayout

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gmplayout completion zsh > "${fpath[1]}/_gmplayout"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ gmplayout completion fish | source

  # To load completions for each session, execute once:
  $ gmplayout completion fish > ~/.config/fish/completions/gmplayout.fish

PowerShell:
  PS> gmplayout completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> gmplayout completion powershell > gmplayout.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// registerFlagCompletions adds value completions for the flags that take
// catalog ids, styles, jurisdictions or classes. Flags a command does not
// define are skipped.
func registerFlagCompletions(root *cobra.Command) {
	cat := catalog.MustDefault()

	var templates, roomTypes []string
	for _, t := range cat.Templates() {
		templates = append(templates, t.ID+"\t"+t.Name)
	}
	for _, t := range cat.RoomTypes() {
		roomTypes = append(roomTypes, t.ID+"\t"+t.Name)
	}
	var zones []string
	for _, z := range compliance.Jurisdictions {
		zones = append(zones, string(z))
	}
	classes := []string{"A", "B", "C", "D", "CNC"}
	var relations []string
	for _, t := range facility.RelationTypes {
		relations = append(relations, string(t))
	}

	values := map[string][]string{
		"facility":      templates,
		"rooms":         roomTypes,
		"type":          roomTypes,
		"neighbor-type": roomTypes,
		"style":         pipeline.Styles(),
		"jurisdiction":  zones,
		"class":         classes,
		"ceiling":       classes[:4],
		"relation":      relations,
	}

	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, vals := range values {
			if cmd.Flags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, fixedCompletion(vals))
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

func fixedCompletion(vals []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range vals {
			if strings.HasPrefix(v, toComplete) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
