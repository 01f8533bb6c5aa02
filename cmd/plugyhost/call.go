package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/plugyrt/plugy/runtime"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <plugin> <method> [json-arg]",
	Short: "Call a method on a manifest plugin with a JSON argument",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pluginName, method := args[0], args[1]
		argJSON := "null"
		if len(args) == 3 {
			argJSON = args[2]
		}

		manifest, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}
		entry, err := manifest.entry(pluginName)
		if err != nil {
			return err
		}

		ctx := context.Background()
		rt, err := runtime.New[ManifestEntry](ctx)
		if err != nil {
			return fmt.Errorf("construct runtime: %w", err)
		}
		defer rt.Close(ctx)

		handle, err := rt.Load(ctx, &fileLoader{entry: entry})
		if err != nil {
			return fmt.Errorf("load %s: %w", pluginName, err)
		}

		fn, err := runtime.GetFunc[json.RawMessage, json.RawMessage](handle, method)
		if err != nil {
			return fmt.Errorf("resolve %s.%s: %w", pluginName, method, err)
		}

		arg := json.RawMessage(argJSON)
		result, err := fn.Call(ctx, &arg)
		if err != nil {
			return fmt.Errorf("call %s.%s: %w", pluginName, method, err)
		}
		fmt.Println(string(result))
		return nil
	},
}
