package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/whomadeit/internal/analysis"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List recently recorded queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		d, err := openDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		queries, err := d.analyzer.RecentQueries(ctx, limit)
		if err != nil {
			return fmt.Errorf("list queries: %w", err)
		}
		if len(queries) == 0 {
			fmt.Println("No queries recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-6s  %-24s  %-16s  %s\n", "Timestamp", "Result", "Creator", "Category", "Item")
		fmt.Println(strings.Repeat("─", 100))
		for _, q := range queries {
			fmt.Printf("%-19s  %-6s  %-24s  %-16s  %s\n",
				q.Timestamp.Local().Format("2006-01-02 15:04:05"),
				q.Result,
				truncate(q.CreatorName, 24),
				truncate(q.Category, 16),
				q.InputText)
		}
		return nil
	},
}

func init() {
	queriesCmd.Flags().IntP("limit", "n", analysis.DefaultQueryLimit, "Number of queries to show")
}
