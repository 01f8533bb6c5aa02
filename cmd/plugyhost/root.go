// Package main implements plugyhost, a thin CLI for manually exercising a
// built plugy module: validate a manifest, load its plugins, and invoke a
// named method — without writing a Go main for every experiment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var manifestPath string

var rootCmd = &cobra.Command{
	Use:   "plugyhost",
	Short: "Load and call plugy Wasm plugins from a manifest",
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "plugins.yaml", "path to the plugin manifest")
	rootCmd.AddCommand(listCmd, loadCmd, callCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
