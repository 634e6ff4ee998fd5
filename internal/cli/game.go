package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/model"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Stored game commands",
	}

	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameRandomCmd())
	cmd.AddCommand(newGameRecentCmd())
	cmd.AddCommand(newGameSubmitCmd())

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.PublicGame

			if err := client.Get(cmd.Context(), "/api/v1/games/"+url.PathEscape(args[0]), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Show a random substantial game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.PublicGame

			if err := client.Get(cmd.Context(), "/api/v1/games/random", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameRecentCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Summaries

			if err := client.Get(cmd.Context(), "/api/v1/games/recent", countQuery(count), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of games to list")
	return cmd
}

func newGameSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <file>",
		Short: "Submit a finished-game document (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = readAll(cmd)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read game document: %w", err)
			}

			var doc json.RawMessage
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("game document is not valid JSON: %w", err)
			}

			var result response.GameStored
			status, err := client.Post(cmd.Context(), "/api/v1/games", doc, &result)
			if err != nil {
				return err
			}

			out := output(cmd)
			if status == http.StatusNoContent {
				out.PrintMessage("Game not stored")
				return nil
			}
			out.Print(result)
			return nil
		},
	}
}

func countQuery(count int) url.Values {
	return url.Values{"count": []string{strconv.Itoa(count)}}
}
