package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gamevault/gamevault-go/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long:  `Prints the effective configuration after defaults, config file and environment overrides, as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Neo4j.Password != "" {
			shown.Neo4j.Password = "********"
		}
		if shown.BGG.APIToken != "" {
			shown.BGG.APIToken = "********"
		}
		return printConfig(cmd, &shown)
	},
}

func printConfig(cmd *cobra.Command, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	cmd.Print(string(out))
	return nil
}
