// Package cli implements the retryfixture command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo carries values injected at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// NewRootCommand builds the command tree. Running the root command with no
// subcommand starts the server, the same as "serve".
func NewRootCommand(info BuildInfo) *cobra.Command {
	f := &serveFlags{}

	root := &cobra.Command{
		Use:   "retryfixture",
		Short: "Scenario-driven HTTP fixture for client retry tests",
		Long: `retryfixture answers every request with a canned response chosen by the
last segment of /url/path/{key}. Some keys walk through multi-request
sequences (retries, retrythenfail, retrythensuccess) so HTTP clients can
be tested for retry and backoff handling. Requesting /url/path/endtest
answers with success and then exits.

Settings come from flags, then environment variables, then defaults.`,
		Example: `  # Start on the port from HTTP_SERVER_PORT (default 3000)
  retryfixture

  # Start on another port with debug logging
  retryfixture serve --port 4000 --log-level debug

  # Add scenarios from a file
  retryfixture serve --catalog extra-scenarios.yaml

  # Show every scenario key
  retryfixture scenarios`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}
	addServeFlags(root, f)

	root.AddCommand(newServeCommand())
	root.AddCommand(newScenariosCommand())
	root.AddCommand(newVersionCommand(info))
	return root
}

// Execute runs the command line and exits non-zero on error.
func Execute(info BuildInfo) {
	if err := NewRootCommand(info).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
