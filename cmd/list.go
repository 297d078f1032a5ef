package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nebulabroadcast/html-template-builder/internal/config"
	"github.com/nebulabroadcast/html-template-builder/internal/registry"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all templates in the source directory",
	Long: `List every template directory with the source files it provides.

Examples:
  template-builder list              # Table output
  template-builder list -f json      # Output as JSON
  template-builder list -f yaml      # Output as YAML`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFlags *OutputFlags

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags = AddOutputFlags(listCmd, "table", "json", "yaml")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	srcDir, err := config.ResolvePath(cfg.Paths.SrcDir)
	if err != nil {
		return fmt.Errorf("paths.src_dir: %w", err)
	}

	sources, err := describeAll(registry.New(srcDir))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(listFlags.Format) {
	case "json":
		return outputListJSON(out, sources)
	case "yaml":
		return outputListYAML(out, sources)
	default:
		return outputListTable(out, sources)
	}
}

func describeAll(reg *registry.Registry) ([]*registry.Source, error) {
	names, err := reg.List()
	if err != nil {
		return nil, err
	}

	sources := make([]*registry.Source, 0, len(names))
	for _, name := range names {
		src, err := reg.Describe(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func outputListJSON(w io.Writer, sources []*registry.Source) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sources)
}

func outputListYAML(w io.Writer, sources []*registry.Source) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(sources); err != nil {
		return err
	}
	return encoder.Close()
}

func outputListTable(w io.Writer, sources []*registry.Source) error {
	if len(sources) == 0 {
		_, err := fmt.Fprintln(w, "No templates found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMARKUP\tSTYLESHEET\tSCRIPT\tMANIFEST\tFILES")
	for _, s := range sources {
		stylesheet := s.Stylesheet
		if stylesheet == "" {
			stylesheet = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			s.Name, yesNo(s.Markup), stylesheet, yesNo(s.Script), yesNo(s.Manifest), len(s.Ancillary))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
