// Command devserver runs the browser-resident development server: it
// watches a project directory, resolves its routes, transforms modules on
// demand, and serves the bootstrap document and HMR channel over HTTP.
package main

import (
	"os"

	"github.com/spf13/cobra"

	deverrors "github.com/nextlite/nextlite/internal/errors"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		deverrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Browser-resident development server for file-routed React-style projects",
	}
	cmd.AddCommand(newServeCommand())
	return cmd
}
