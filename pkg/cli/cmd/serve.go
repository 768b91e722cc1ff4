package cmd

import (
	"github.com/joeydtaylor/durable-starter/pkg/serverfx"
	"github.com/joeydtaylor/durable-starter/pkg/services/myservice"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := []serverfx.Option{serverfx.WithService("durable-starter")}
		if configPath != "" {
			opts = append(opts, serverfx.WithDefaultConfig(configPath))
		}
		app := fx.New(
			serverfx.Module(opts...),
			fx.Provide(myservice.NewEndpoint),
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file used when $DURABLE_CONFIG is unset (default durable.toml)")
}
