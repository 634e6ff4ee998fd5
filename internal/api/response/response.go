package response

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/wallwars-go/internal/model"
)

// Health is the response body of the health endpoint
type Health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// GameStored is returned when an ingested game was written
type GameStored struct {
	ID model.GameID `json:"id"`
}

// JSON writes data as a JSON body with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
