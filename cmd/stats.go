package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show global counters, milestones and categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		d, err := openDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		snap, err := d.analyzer.Stats(ctx)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		cats, err := d.analyzer.Categories(ctx)
		if err != nil {
			return fmt.Errorf("aggregate categories: %w", err)
		}
		milestones, err := d.analyzer.Milestones(ctx)
		if err != nil {
			return fmt.Errorf("list milestones: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"stats":      snap,
				"categories": cats,
				"milestones": milestones,
			})
		}

		fmt.Printf("Total:  %d\n", snap.TotalQueries)
		fmt.Printf("Men:    %d (%s)\n", snap.MenCount, percent(snap.MenCount, snap.TotalQueries))
		fmt.Printf("Women:  %d (%s)\n", snap.WomenCount, percent(snap.WomenCount, snap.TotalQueries))

		if len(milestones) > 0 {
			fmt.Println()
			fmt.Println("Milestones")
			fmt.Println(strings.Repeat("─", 60))
			fmt.Printf("%-10s  %-19s  %10s  %10s\n", "Count", "Reached", "Men", "Women")
			for _, m := range milestones {
				fmt.Printf("%-10d  %-19s  %10d  %10d\n",
					m.Count,
					m.AchievedAt.Local().Format("2006-01-02 15:04:05"),
					m.MenAtMilestone,
					m.WomenAtMilestone)
			}
		}

		if len(cats) > 0 {
			fmt.Println()
			fmt.Println("Categories")
			fmt.Println(strings.Repeat("─", 60))
			fmt.Printf("%-28s  %8s  %8s  %8s\n", "Category", "Count", "Men", "Women")
			for _, c := range cats {
				fmt.Printf("%-28s  %8d  %8d  %8d\n",
					truncate(c.Category, 28), c.Count, c.MenCount, c.WomenCount)
			}
		}
		return nil
	},
}

func percent(n, total int64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print as JSON")
}
