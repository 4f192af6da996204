package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cad-exporter/internal/exporter/ifc"
	"cad-exporter/internal/exporter/models"
)

// IFCOptions хранит флаги команды ifc.
type IFCOptions struct {
	Output      string
	ProjectName string
	Schema      string
	Format      string
	BakeWorld   bool
	RootContext bool
}

// NewIFCCommand создаёт команду ifc.
func NewIFCCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IFCOptions{}

	cmd := &cobra.Command{
		Use:   "ifc <elements.json|->",
		Short: "Build an IFC (STEP) model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIFC(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.ProjectName, "project", "p", "", "project name")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "IFC schema (IFC4|IFC2X3)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "geometry encoding (tfs|brep)")
	cmd.Flags().BoolVar(&opts.BakeWorld, "bake-world", false, "write world coordinates with identity placements")
	cmd.Flags().BoolVar(&opts.RootContext, "root-context", false, "attach geometry to the root representation context")

	return cmd
}

func runIFC(cmd *cobra.Command, rootOpts *RootOptions, opts *IFCOptions, input string) error {
	req, err := readRequest(cmd, input)
	if err != nil {
		return err
	}

	settings := rootOpts.Config.Export.IFC.Merge(req.IFC)
	flags := cmd.Flags()
	if flags.Changed("schema") {
		settings.Schema = opts.Schema
	}
	if flags.Changed("format") {
		settings.Format = opts.Format
	}
	if flags.Changed("bake-world") {
		settings.BakeWorld = &opts.BakeWorld
	}
	if flags.Changed("root-context") {
		settings.Compat.UseRootContextForBody = &opts.RootContext
	}

	project := projectName(opts.ProjectName, req.ProjectName, rootOpts.Config.Export.ProjectName)

	ifcOpts := ifc.FromSettings(settings)
	ifcOpts.Logger = rootOpts.Log

	text, err := ifc.BuildModel(project, req.Elements, ifcOpts)
	if err != nil {
		return fmt.Errorf("ifc export failed %v: %w", ifc.FailedChecks(err), err)
	}

	rootOpts.Log.Debug("ifc export done",
		zap.String("project", project),
		zap.Int("elements", len(req.Elements)))

	return writeOutput(cmd, opts.Output, []byte(text))
}

// projectName: флаг → поле запроса → конфиг.
func projectName(flag, request, configured string) string {
	for _, name := range []string{flag, request, configured} {
		if name != "" {
			return models.ProjectName(name)
		}
	}
	return models.DefaultProjectName
}
