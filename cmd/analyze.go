package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/whomadeit/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <item...>",
	Short: "Classify who created an item",
	Long: "Classify who created an item. By default all arguments form one item;\n" +
		"with --each every argument is classified separately.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		each, _ := cmd.Flags().GetBool("each")
		parallel, _ := cmd.Flags().GetInt("parallel")
		asJSON, _ := cmd.Flags().GetBool("json")

		items := []string{strings.Join(args, " ")}
		if each {
			items = args
		}

		ctx := cmd.Context()
		d, err := openDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		results := make([]*store.Query, len(items))
		var mu sync.Mutex
		var failed []string

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(parallel, 1))
		for i, item := range items {
			g.Go(func() error {
				q, err := d.analyzer.Analyze(gctx, item)
				if err != nil {
					mu.Lock()
					failed = append(failed, fmt.Sprintf("%s: %v", item, err))
					mu.Unlock()
					return nil
				}
				results[i] = q
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, q := range results {
			if q == nil {
				continue
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(q); err != nil {
					return err
				}
				continue
			}
			printQuery(q)
		}

		if len(failed) > 0 {
			for _, f := range failed {
				fmt.Fprintln(os.Stderr, "error:", f)
			}
			return fmt.Errorf("%d of %d items failed", len(failed), len(items))
		}
		return nil
	},
}

func printQuery(q *store.Query) {
	fmt.Printf("Item:        %s\n", q.InputText)
	fmt.Printf("Result:      %s\n", q.Result)
	fmt.Printf("Creator:     %s\n", q.CreatorName)
	fmt.Printf("Category:    %s\n", q.Category)
	if q.Explanation != "" {
		fmt.Printf("Explanation: %s\n", q.Explanation)
	}
	fmt.Println()
}

func init() {
	analyzeCmd.Flags().Bool("each", false, "Classify each argument as a separate item")
	analyzeCmd.Flags().IntP("parallel", "p", 4, "Concurrent classifications with --each")
	analyzeCmd.Flags().Bool("json", false, "Print results as JSON")
}
