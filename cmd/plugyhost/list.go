package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the plugins declared in the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}
		fmt.Println("Name                 | Path")
		fmt.Println("---------------------|----------------------------------")
		for _, p := range manifest.Plugins {
			fmt.Printf("%-20s | %s\n", p.Name, p.Path)
		}
		return nil
	},
}
