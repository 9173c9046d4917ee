package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shopvoice/function-gateway/internal/domain/catalog"
	"github.com/shopvoice/function-gateway/internal/domain/function"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Describe the functions the gateway serves",
}

var functionsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print function names, descriptions and parameter schemas",
	Long:  `Print the registered functions as JSON (default) or YAML, ready to paste into the voice assistant's tool configuration.`,
	Args:  cobra.NoArgs,
	RunE:  runFunctionsSchema,
}

func init() {
	functionsCmd.AddCommand(functionsSchemaCmd)
	functionsSchemaCmd.Flags().Bool("compact", false, "Print JSON without indentation")
	functionsSchemaCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml")
}

func runFunctionsSchema(cmd *cobra.Command, args []string) error {
	registry := function.NewRegistry()
	// Handlers are never invoked here, so no storefront client is needed.
	if err := catalog.New(nil, catalog.Options{}).Register(registry); err != nil {
		return err
	}

	descriptors := registry.Descriptors()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		if compact, _ := cmd.Flags().GetBool("compact"); !compact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(descriptors)
	case "yaml":
		// Round-trip through JSON so the schema keeps its JSON field names.
		raw, err := json.Marshal(descriptors)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}
}
