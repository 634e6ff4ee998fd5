package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/wallwars-go/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health and store connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health

			if err := client.Get(cmd.Context(), "/api/v1/health", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRankingCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the top rated players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Ranking

			if err := client.Get(cmd.Context(), "/api/v1/ranking", countQuery(count), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of players to show")
	return cmd
}
