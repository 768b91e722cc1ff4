package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "durable-starter",
	Short: "Example handlers served for a durable-execution runtime",
	Long: `durable-starter serves the myservice handlers (hello, firstProductInCart,
sleepyHandler) over HTTP/2 and registers them with the runtime's admin API.

Examples:
  # serve with durable.toml (or defaults when it is missing)
  durable-starter serve

  # register a running endpoint with a local runtime
  durable-starter register --admin http://localhost:9070 --uri http://host.docker.internal:9080`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registerCmd)
}
