// cmd/api/suggest.go

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		userID string
		limit  int
		expire bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate buddy suggestions once and print the result as JSON",
		Long: "Generates suggestions for one user (--user) or for every user with buddy\n" +
			"matching enabled, optionally expiring stale suggestions first (--expire).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := parentOrBackground(cmd.Context())

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			out := map[string]interface{}{}
			if expire {
				n, err := a.matches.ExpireStale(ctx)
				if err != nil {
					return err
				}
				out["expired"] = n
			}

			if err := runSuggest(ctx, a, userID, limit, out); err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "generate for a single user id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions per user (0 uses MATCH_DEFAULT_LIMIT)")
	cmd.Flags().BoolVar(&expire, "expire", false, "expire stale pending suggestions before generating")
	return cmd
}

func runSuggest(ctx context.Context, a *app, userID string, limit int, out map[string]interface{}) error {
	if userID != "" {
		views, err := a.matches.Generate(ctx, userID, limit)
		if err != nil {
			return err
		}
		out["suggestions"] = views
		out["count"] = len(views)
		return nil
	}

	report, err := a.matches.GenerateForActiveUsers(ctx, limit)
	if err != nil {
		return err
	}
	out["report"] = report
	return nil
}
