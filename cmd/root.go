package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/whomadeit/internal/config"
	"github.com/abhisek/whomadeit/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "whomadeit",
	Short: "Who made it? Inventor gender classifier",
	Long: "whomadeit asks an LLM who created an item, records whether the creator\n" +
		"was a man or a woman, and serves running statistics over HTTP.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WHOMADEIT_DB env var)")
	rootCmd.PersistentFlags().String("config", "whomadeit.yaml", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, then .env and the
// environment. --db overrides the database path.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, falling back to the
// default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Database.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
