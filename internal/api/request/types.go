package request

// SolvePuzzleRequest is the request body for recording a solved puzzle
type SolvePuzzleRequest struct {
	Name     string `json:"name"`
	PuzzleID string `json:"puzzle_id"`
}
