package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wallwars-go/internal/api"
	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/factory"
	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage/storagetest"
)

type CLISuite struct {
	suite.Suite
	app       *factory.TestApp
	server    *httptest.Server
	tokenFile string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.T().Setenv("WALLWARS_TOKEN", "")
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:        s.app.Logger,
		PlayerService: s.app.PlayerService,
		GameService:   s.app.GameService,
		Availability:  s.app.Availability,
	}))
	s.tokenFile = filepath.Join(s.T().TempDir(), "token")
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--token-file", s.tokenFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) seedGame(moves int) model.GameID {
	id, ok := s.app.GameService.StoreGame(s.T().Context(), storagetest.Finished(moves, storagetest.BaseTime))
	s.Require().True(ok)
	return id
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
	s.Contains(out, "Store: ready")
}

func (s *CLISuite) TestHealthJSON() {
	out, err := s.run("-o", "json", "health")
	s.Require().NoError(err)

	var h response.Health
	s.Require().NoError(json.Unmarshal([]byte(out), &h))
	s.Equal("ready", h.Store)
}

func (s *CLISuite) TestRanking() {
	s.seedGame(30)

	out, err := s.run("ranking", "--count", "5")
	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	s.Require().Len(lines, 2)
	s.Contains(lines[0], "Creator")
	s.Contains(lines[1], "Joiner")
}

func (s *CLISuite) TestLoginThenMe() {
	s.seedGame(30)

	_, err := s.run("player", "login", "Auth0|joiner")
	s.Require().NoError(err)
	data, err := os.ReadFile(s.tokenFile)
	s.Require().NoError(err)
	s.Equal("Auth0|joiner", string(data))

	out, err := s.run("player", "me")
	s.Require().NoError(err)
	s.Contains(out, "Player: Joiner")
	s.Contains(out, "Games: 1 (0 won, 0 drawn)")
}

func (s *CLISuite) TestMeWithoutToken() {
	_, err := s.run("player", "me")
	s.Error(err)
}

func (s *CLISuite) TestMeUnknownPlayer() {
	_, err := s.run("--token", "Auth0|nobody", "player", "me")
	s.Require().Error(err)
	s.Contains(err.Error(), "PLAYER_NOT_FOUND")
}

func (s *CLISuite) TestSolvePuzzle() {
	_, err := s.run("--token", "Auth0|solver", "player", "solve", "puzzle-9", "--name", "Solver")
	s.Require().NoError(err)

	p, ok := s.app.PlayerService.Get(s.T().Context(), "Auth0|solver")
	s.Require().True(ok)
	s.Equal([]string{"puzzle-9"}, p.SolvedPuzzles)
	s.Equal("Solver", p.Name)
}

func (s *CLISuite) TestGameGetAndRecent() {
	id := s.seedGame(30)

	out, err := s.run("game", "get", string(id))
	s.Require().NoError(err)
	s.Contains(out, "Players: Creator vs Joiner")
	s.Contains(out, "Moves: 30")

	out, err = s.run("game", "recent")
	s.Require().NoError(err)
	s.Contains(out, string(id))
}

func (s *CLISuite) TestGameRandomWithNoGames() {
	_, err := s.run("game", "random")
	s.Require().Error(err)
	s.Contains(err.Error(), "NO_RESULT")
}

func (s *CLISuite) TestGameSubmit() {
	path := filepath.Join(s.T().TempDir(), "game.json")
	data, err := json.Marshal(storagetest.Game(25, storagetest.BaseTime))
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, data, 0o600))

	out, err := s.run("game", "submit", path)
	s.Require().NoError(err)
	s.Contains(out, "Game stored: ")

	n, err := s.app.MemoryStorage.CountGames(s.T().Context(), 1)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *CLISuite) TestGameSubmitShortGameIsDropped() {
	path := filepath.Join(s.T().TempDir(), "game.json")
	data, err := json.Marshal(storagetest.Game(1, storagetest.BaseTime))
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, data, 0o600))

	out, err := s.run("game", "submit", path)
	s.Require().NoError(err)
	s.Contains(out, "Game not stored")
}

func (s *CLISuite) TestGameSubmitInvalidDocument() {
	doc := storagetest.Game(25, storagetest.BaseTime)
	doc.MatchScore = []int{1}
	path := filepath.Join(s.T().TempDir(), "game.json")
	data, err := json.Marshal(doc)
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, data, 0o600))

	_, err = s.run("game", "submit", path)
	s.Require().Error(err)
	s.Contains(err.Error(), "INVALID_DOCUMENT")
	s.Contains(err.Error(), "matchScore")
}
