package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/TheVeryDarkness/umake/pipeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective scan configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective scan configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipeline.Default()
		if err := buildConfigFromViper(cfg); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "yaml":
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
		default:
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().String("format", "json", "output format: json or yaml")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
