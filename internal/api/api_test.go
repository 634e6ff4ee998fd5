package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wallwars-go/internal/api"
	"github.com/mcoot/wallwars-go/internal/api/apierr"
	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/availability"
	"github.com/mcoot/wallwars-go/internal/factory"
	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage/storagetest"
)

type APISuite struct {
	suite.Suite
	app     *factory.TestApp
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.handler = api.NewRouter(api.RouterConfig{
		Logger:        s.app.Logger,
		PlayerService: s.app.PlayerService,
		GameService:   s.app.GameService,
		Availability:  s.app.Availability,
	})
}

func (s *APISuite) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *APISuite) decode(rr *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func (s *APISuite) errorCode(rr *httptest.ResponseRecorder) string {
	var resp apierr.ErrorResponse
	s.decode(rr, &resp)
	return resp.Error.Code
}

func (s *APISuite) storeGame(moves int, start time.Time) model.GameID {
	id, ok := s.app.GameService.StoreGame(s.T().Context(), storagetest.Finished(moves, start))
	s.Require().True(ok)
	return id
}

// Health

func (s *APISuite) TestHealthReportsStoreState() {
	rr := s.request(http.MethodGet, "/api/v1/health", nil, "")
	s.Equal(http.StatusOK, rr.Code)

	var h response.Health
	s.decode(rr, &h)
	s.Equal("ok", h.Status)
	s.Equal("ready", h.Store)

	s.app.MockAvailability.SetState(availability.StateFailed)
	rr = s.request(http.MethodGet, "/api/v1/health", nil, "")
	s.Equal(http.StatusOK, rr.Code)
	s.decode(rr, &h)
	s.Equal("failed", h.Store)
}

func (s *APISuite) TestRequestIDHeader() {
	rr := s.request(http.MethodGet, "/api/v1/health", nil, "")
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}

// Ranking

func (s *APISuite) TestRanking() {
	s.storeGame(30, storagetest.BaseTime)

	rr := s.request(http.MethodGet, "/api/v1/ranking", nil, "")
	s.Require().Equal(http.StatusOK, rr.Code)

	var ranked []model.RankedPlayer
	s.decode(rr, &ranked)
	s.Require().Len(ranked, 2)
	s.Equal("Creator", ranked[0].Name)
	s.NotContains(rr.Body.String(), "idToken")
	s.NotContains(rr.Body.String(), "Auth0|")
}

func (s *APISuite) TestRankingCountIsCapped() {
	s.storeGame(30, storagetest.BaseTime)

	rr := s.request(http.MethodGet, "/api/v1/ranking?count=1000", nil, "")
	s.Equal(http.StatusOK, rr.Code)
	rr = s.request(http.MethodGet, "/api/v1/ranking?count=1", nil, "")
	s.Require().Equal(http.StatusOK, rr.Code)

	var ranked []model.RankedPlayer
	s.decode(rr, &ranked)
	s.Len(ranked, 1)
}

func (s *APISuite) TestRankingBadCount() {
	rr := s.request(http.MethodGet, "/api/v1/ranking?count=lots", nil, "")
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidRequest, s.errorCode(rr))

	rr = s.request(http.MethodGet, "/api/v1/ranking?count=0", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodeNoResult, s.errorCode(rr))
}

func (s *APISuite) TestRankingEmptyStore() {
	rr := s.request(http.MethodGet, "/api/v1/ranking", nil, "")
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`[]`, rr.Body.String())
}

func (s *APISuite) TestRankingStoreUnavailable() {
	s.app.MockAvailability.SetAvailable(false)

	rr := s.request(http.MethodGet, "/api/v1/ranking", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodeNoResult, s.errorCode(rr))
}

// Players

func (s *APISuite) TestMeRequiresIdentity() {
	rr := s.request(http.MethodGet, "/api/v1/players/me", nil, "")
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal(apierr.CodeUnauthorized, s.errorCode(rr))
}

func (s *APISuite) TestMe() {
	s.storeGame(30, storagetest.BaseTime)

	rr := s.request(http.MethodGet, "/api/v1/players/me", nil, "Auth0|creator")
	s.Require().Equal(http.StatusOK, rr.Code)

	var p model.Player
	s.decode(rr, &p)
	s.Equal("Auth0|creator", p.IDToken)
	s.Equal(1, p.GameCount)
	s.Equal(1, p.WinCount)
}

func (s *APISuite) TestMeUnknown() {
	rr := s.request(http.MethodGet, "/api/v1/players/me", nil, "Auth0|stranger")
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodePlayerNotFound, s.errorCode(rr))
}

func (s *APISuite) TestSolvePuzzle() {
	body := map[string]string{"name": "Puzzler", "puzzle_id": "p-1"}
	rr := s.request(http.MethodPost, "/api/v1/players/me/puzzles", body, "Auth0|puzzler")
	s.Require().Equal(http.StatusNoContent, rr.Code)

	rr = s.request(http.MethodGet, "/api/v1/players/me", nil, "Auth0|puzzler")
	s.Require().Equal(http.StatusOK, rr.Code)
	var p model.Player
	s.decode(rr, &p)
	s.Equal([]string{"p-1"}, p.SolvedPuzzles)
	s.Equal("Puzzler", p.Name)
}

func (s *APISuite) TestSolvePuzzleValidation() {
	rr := s.request(http.MethodPost, "/api/v1/players/me/puzzles", map[string]string{"name": "x"}, "Auth0|puzzler")
	s.Equal(http.StatusBadRequest, rr.Code)

	rr = s.request(http.MethodPost, "/api/v1/players/me/puzzles", map[string]string{"puzzle_id": "p-1"}, "")
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *APISuite) TestSolvePuzzleAsGuestIsAcceptedButNotRecorded() {
	rr := s.request(http.MethodPost, "/api/v1/players/me/puzzles", map[string]string{"puzzle_id": "p-1"}, "guest-42")
	s.Equal(http.StatusNoContent, rr.Code)

	rr = s.request(http.MethodGet, "/api/v1/players/me", nil, "guest-42")
	s.Equal(http.StatusNotFound, rr.Code)
}

// Games

func (s *APISuite) TestStoreGame() {
	rr := s.request(http.MethodPost, "/api/v1/games", storagetest.Game(25, storagetest.BaseTime), "")
	s.Require().Equal(http.StatusAccepted, rr.Code, rr.Body.String())

	var stored response.GameStored
	s.decode(rr, &stored)
	s.NotEmpty(stored.ID)

	rr = s.request(http.MethodGet, "/api/v1/games/"+string(stored.ID), nil, "")
	s.Require().Equal(http.StatusOK, rr.Code)
	var g model.PublicGame
	s.decode(rr, &g)
	s.Equal(stored.ID, g.ID)
	s.Len(g.MoveHistory, 25)
	s.NotContains(rr.Body.String(), "idTokens")
	s.NotContains(rr.Body.String(), "Auth0|")
}

func (s *APISuite) TestStoreGameIgnoresClientID() {
	doc := storagetest.Game(25, storagetest.BaseTime)
	doc.ID = "chosen-by-client"

	rr := s.request(http.MethodPost, "/api/v1/games", doc, "")
	s.Require().Equal(http.StatusAccepted, rr.Code)
	var stored response.GameStored
	s.decode(rr, &stored)
	s.NotEqual(model.GameID("chosen-by-client"), stored.ID)
}

func (s *APISuite) TestStoreGameRejectsInvalidDocument() {
	doc := storagetest.Game(25, storagetest.BaseTime)
	doc.MatchScore = []int{1}
	doc.Winner = "nobody"

	rr := s.request(http.MethodPost, "/api/v1/games", doc, "")
	s.Equal(http.StatusUnprocessableEntity, rr.Code)

	var resp apierr.ErrorResponse
	s.decode(rr, &resp)
	s.Equal(apierr.CodeInvalidDocument, resp.Error.Code)
	s.Len(resp.Error.Details, 2)
}

func (s *APISuite) TestStoreGameDropsShortGame() {
	rr := s.request(http.MethodPost, "/api/v1/games", storagetest.Game(1, storagetest.BaseTime), "")
	s.Equal(http.StatusNoContent, rr.Code)
}

func (s *APISuite) TestStoreGameWhileUnavailable() {
	s.app.MockAvailability.SetAvailable(false)
	rr := s.request(http.MethodPost, "/api/v1/games", storagetest.Game(25, storagetest.BaseTime), "")
	s.Equal(http.StatusNoContent, rr.Code)
}

func (s *APISuite) TestStoreGameMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *APISuite) TestGetGameNotFound() {
	rr := s.request(http.MethodGet, "/api/v1/games/does-not-exist", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodeGameNotFound, s.errorCode(rr))
}

func (s *APISuite) TestRandomGame() {
	s.storeGame(10, storagetest.BaseTime)
	long := s.storeGame(21, storagetest.BaseTime.Add(time.Hour))

	s.app.MockRandom.QueueIntn(0)
	rr := s.request(http.MethodGet, "/api/v1/games/random", nil, "")
	s.Require().Equal(http.StatusOK, rr.Code)

	var g model.PublicGame
	s.decode(rr, &g)
	s.Equal(long, g.ID)
}

func (s *APISuite) TestRandomGameNoneEligible() {
	s.storeGame(20, storagetest.BaseTime)

	rr := s.request(http.MethodGet, "/api/v1/games/random", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodeNoResult, s.errorCode(rr))
}

func (s *APISuite) TestRecentGames() {
	s.storeGame(4, storagetest.BaseTime)
	older := s.storeGame(5, storagetest.BaseTime.Add(time.Hour))
	newer := s.storeGame(40, storagetest.BaseTime.Add(2*time.Hour))

	rr := s.request(http.MethodGet, "/api/v1/games/recent?count=10", nil, "")
	s.Require().Equal(http.StatusOK, rr.Code)

	var summaries []model.GameSummary
	s.decode(rr, &summaries)
	s.Require().Len(summaries, 2)
	s.Equal(newer, summaries[0].ID)
	s.Equal(older, summaries[1].ID)
	s.NotContains(rr.Body.String(), "moveHistory")
}

func (s *APISuite) TestRecentGamesNonPositiveCount() {
	rr := s.request(http.MethodGet, "/api/v1/games/recent?count=-1", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *APISuite) TestUnknownRoute() {
	rr := s.request(http.MethodGet, "/api/v1/lobbies", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
}
