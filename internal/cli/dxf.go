package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cad-exporter/internal/exporter/dxf"
)

// DXFOptions хранит флаги команды dxf.
type DXFOptions struct {
	Output   string
	Version  string
	Scale    float64
	InsUnits int
}

// NewDXFCommand создаёт команду dxf.
func NewDXFCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DXFOptions{}

	cmd := &cobra.Command{
		Use:   "dxf <elements.json|->",
		Short: "Build a DXF R12 drawing of 3DFACE entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDXF(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Version, "dxf-version", dxf.DefaultVersion, "$ACADVER value")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 1, "uniform coordinate scale")
	cmd.Flags().IntVar(&opts.InsUnits, "insunits", dxf.DefaultInsUnits, "$INSUNITS value")

	return cmd
}

func runDXF(cmd *cobra.Command, rootOpts *RootOptions, opts *DXFOptions, input string) error {
	req, err := readRequest(cmd, input)
	if err != nil {
		return err
	}

	settings := rootOpts.Config.Export.DXF.Merge(req.DXF)
	flags := cmd.Flags()
	if flags.Changed("dxf-version") {
		settings.Version = opts.Version
	}
	if flags.Changed("scale") {
		settings.Scale = opts.Scale
	}
	if flags.Changed("insunits") {
		settings.InsUnits = &opts.InsUnits
	}

	dxfOpts := dxf.FromSettings(settings)
	dxfOpts.Logger = rootOpts.Log

	data := dxf.Encode(dxf.Build(req.Elements, dxfOpts))

	rootOpts.Log.Debug("dxf export done",
		zap.Int("elements", len(req.Elements)),
		zap.Int("bytes", len(data)))

	return writeOutput(cmd, opts.Output, data)
}
