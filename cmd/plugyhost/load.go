package main

import (
	"context"
	"fmt"

	"github.com/plugyrt/plugy/runtime"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load every plugin in the manifest and report success or failure",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}

		ctx := context.Background()
		rt, err := runtime.New[ManifestEntry](ctx)
		if err != nil {
			return fmt.Errorf("construct runtime: %w", err)
		}
		defer rt.Close(ctx)

		failed := 0
		for _, entry := range manifest.Plugins {
			if _, err := rt.Load(ctx, &fileLoader{entry: entry}); err != nil {
				fmt.Printf("✗ %s: %v\n", entry.Name, err)
				failed++
				continue
			}
			fmt.Printf("✓ %s loaded from %s\n", entry.Name, entry.Path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d plugins failed to load", failed, len(manifest.Plugins))
		}
		return nil
	},
}
