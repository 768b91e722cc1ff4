package cmd

import (
	"errors"
	"fmt"

	"github.com/joeydtaylor/durable-starter/pkg/admin"
	"github.com/spf13/cobra"
)

var (
	adminURL    string
	endpointURI string
	force       bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an endpoint with the runtime admin API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if endpointURI == "" {
			return errors.New("--uri is required")
		}
		if err := admin.New(adminURL).RegisterDeployment(cmd.Context(), endpointURI, force); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "registered %s with %s\n", endpointURI, adminURL)
		return err
	},
}

func init() {
	registerCmd.Flags().StringVar(&adminURL, "admin", "http://localhost:9070", "runtime admin API base URL")
	registerCmd.Flags().StringVar(&endpointURI, "uri", "", "endpoint URI the runtime should dial")
	registerCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing deployment with the same URI")
}
