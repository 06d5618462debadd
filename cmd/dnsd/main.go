// Command dnsd serves the name registry over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joeydtaylor/steeze-dns/pkg/serverfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dnsd",
		Short:         "Name registry server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var manifestPath, listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if manifestPath != "" {
				if err := os.Setenv("DNS_MANIFEST", manifestPath); err != nil {
					return err
				}
			}
			if listen != "" {
				if err := os.Setenv("SERVER_LISTEN_ADDRESS", listen); err != nil {
					return err
				}
			}
			app := fx.New(serverfx.Module(serverfx.WithService("dnsd")))
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "manifest path (overrides DNS_MANIFEST)")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides SERVER_LISTEN_ADDRESS)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dnsd:", err)
		os.Exit(1)
	}
}
