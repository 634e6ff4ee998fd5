package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/model"
)

// Ranking is the ranking endpoint's list, named so text output can recognise it
type Ranking []model.RankedPlayer

// Summaries is the recent-games list
type Summaries []model.GameSummary

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\nStore: %s\n", v.Status, v.Store)
	case response.GameStored:
		fmt.Fprintf(o.w, "Game stored: %s\n", v.ID)
	case model.Player:
		o.printPlayer(v)
	case Ranking:
		o.printRanking(v)
	case model.PublicGame:
		o.printGame(v)
	case Summaries:
		o.printSummaries(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p model.Player) {
	fmt.Fprintf(o.w, "Player: %s\n", p.Name)
	fmt.Fprintf(o.w, "Rating: %.0f (peak %.0f, deviation %.0f)\n", p.Rating, p.PeakRating, p.RatingDeviation)
	fmt.Fprintf(o.w, "Games: %d (%d won, %d drawn)\n", p.GameCount, p.WinCount, p.DrawCount)
	if p.LastGameDate != nil {
		fmt.Fprintf(o.w, "Last game: %s\n", p.LastGameDate.Format(time.DateOnly))
	}
	if len(p.SolvedPuzzles) > 0 {
		fmt.Fprintf(o.w, "Solved puzzles: %s\n", strings.Join(p.SolvedPuzzles, ", "))
	}
}

func (o *Output) printRanking(r Ranking) {
	if len(r) == 0 {
		fmt.Fprintln(o.w, "No ranked players")
		return
	}
	for i, p := range r {
		fmt.Fprintf(o.w, "%3d. %-24s %6.0f  (%d games)\n", i+1, p.Name, p.Rating, p.GameCount)
	}
}

func (o *Output) printGame(g model.PublicGame) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "Players: %s vs %s\n", g.PlayerNames[0], g.PlayerNames[1])
	fmt.Fprintf(o.w, "Ratings: %.0f vs %.0f\n", g.Ratings[0], g.Ratings[1])
	fmt.Fprintf(o.w, "Time control: %d+%d\n", g.TimeControl.Duration, g.TimeControl.Increment)
	fmt.Fprintf(o.w, "Board: %dx%d\n", g.BoardSettings.Dims[0], g.BoardSettings.Dims[1])
	fmt.Fprintf(o.w, "Winner: %s (%s)\n", g.Winner, g.FinishReason)
	fmt.Fprintf(o.w, "Moves: %d\n", len(g.MoveHistory))
	fmt.Fprintf(o.w, "Started: %s\n", g.StartDate.Format(time.RFC3339))
}

func (o *Output) printSummaries(s Summaries) {
	if len(s) == 0 {
		fmt.Fprintln(o.w, "No recent games")
		return
	}
	for _, g := range s {
		names := strings.Join(g.PlayerNames, " vs ")
		fmt.Fprintf(o.w, "%s  %s  %-32s %-8s %3d moves\n", g.ID, g.StartDate.Format(time.DateOnly), names, g.Winner, g.NumMoves)
	}
}

func readAll(cmd *cobra.Command) ([]byte, error) {
	return io.ReadAll(cmd.InOrStdin())
}
