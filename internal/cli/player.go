package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/wallwars-go/internal/api/request"
	"github.com/mcoot/wallwars-go/internal/model"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player record commands",
	}

	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerMeCmd())
	cmd.AddCommand(newPlayerSolveCmd())

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <id-token>",
		Short: "Remember an identity token for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return fmt.Errorf("identity token must not be empty")
			}
			if err := cfg.SaveToken(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			if model.IsGuest(token) {
				output(cmd).PrintMessage("Token saved (guest identities are never recorded)")
				return nil
			}
			output(cmd).PrintMessage("Token saved")
			return nil
		},
	}
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your player record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("no identity token: use --token or 'player login'")
			}

			var result model.Player
			if err := client.Get(cmd.Context(), "/api/v1/players/me", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerSolveCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "solve <puzzle-id>",
		Short: "Record a solved puzzle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("no identity token: use --token or 'player login'")
			}

			req := request.SolvePuzzleRequest{Name: name, PuzzleID: args[0]}
			if _, err := client.Post(cmd.Context(), "/api/v1/players/me/puzzles", req, nil); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Puzzle %s recorded", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name used if this creates your record")
	return cmd
}
