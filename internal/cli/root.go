// Package cli содержит команды cadexport: выгрузку IFC/DXF из файла и запуск сервиса.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cad-exporter/internal/common/config"
	"cad-exporter/internal/common/logger"
)

// RootOptions хранит глобальные флаги и то, что из них загружено.
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	Config *config.Config
	Log    *zap.Logger
}

// NewRootCommand создаёт корневую команду cadexport.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cadexport",
		Short: "Export tessellated building elements to IFC and DXF",
		Long: `cadexport converts a JSON list of tessellated building elements
into an ISO-10303-21 IFC model or a DXF R12 drawing, or serves
the same exports over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewIFCCommand(opts))
	cmd.AddCommand(NewDXFCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// load читает конфиг и поднимает логгер. Уже заданные Config/Log не трогает.
func (o *RootOptions) load() error {
	if o.Config == nil {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		o.Config = cfg
	}
	if o.LogLevel != "" {
		o.Config.Logging.Level = o.LogLevel
	}
	if o.Log == nil {
		o.Log = logger.Init(o.Config.Logging.Level, o.Config.Logging.File)
	}
	return nil
}
