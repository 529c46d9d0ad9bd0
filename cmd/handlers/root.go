/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"morningbrief/internal/config"
	"morningbrief/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "morningbrief",
		Short: "Daily market intelligence briefings for a coffee farmer and former banker.",
		Long: `morningbrief generates one Portuguese-language market briefing per day,
grounded in live web search and pre-fetched primary sources, and checks the
result for hallucinated dates and implausible prices before saving it.

Farm economics must be configured before the first briefing:
  morningbrief settings set --cost-basis 1520

Then generate from the CLI or start the HTTP API:
  morningbrief generate
  morningbrief serve`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.morningbrief.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewSettingsCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewClearCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(cfg.Logging.Level)
	if cfg.App.Debug {
		logger.SetLevel("debug")
	}
}
