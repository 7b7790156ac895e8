package apifootball

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotFound is returned when the API has no data for the requested fixture.
var ErrNotFound = errors.New("apifootball: not found")

// Fixture is one scheduled or in-progress match as returned by the fixtures
// endpoints. Only fields we need.
type Fixture struct {
	Info struct {
		ID     int64     `json:"id"`
		Date   time.Time `json:"date"`
		Status struct {
			Short   string `json:"short"`
			Elapsed int    `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Type   string `json:"type"`
		Season int    `json:"season"`
	} `json:"league"`
	Teams struct {
		Home Team `json:"home"`
		Away Team `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FixtureResult is the final (or current) state of one fixture.
type FixtureResult struct {
	StatusShort string
	HomeGoals   int
	AwayGoals   int
	HomeTeam    string
	AwayTeam    string
}

// Terminal reports whether the match has fully concluded, including extra
// time and penalties.
func (r *FixtureResult) Terminal() bool {
	switch r.StatusShort {
	case "FT", "AET", "PEN":
		return true
	}
	return false
}

// Client talks to the API-Football v3 API.
type Client struct {
	key        string
	baseURL    string
	httpClient *http.Client
}

func NewClient(key string) *Client {
	return &Client{
		key:        key,
		baseURL:    "https://v3.football.api-sports.io",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-host", "v3.football.api-sports.io")
	req.Header.Set("x-rapidapi-key", c.key)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("apifootball: unexpected status " + resp.Status)
	}
	var wrapper struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return err
	}
	return json.Unmarshal(wrapper.Response, out)
}

// FixturesByDate lists the fixtures of a calendar day (format YYYY-MM-DD).
func (c *Client) FixturesByDate(ctx context.Context, date string) ([]Fixture, error) {
	var fixtures []Fixture
	if err := c.get(ctx, "/fixtures?date="+date, &fixtures); err != nil {
		return nil, fmt.Errorf("fixtures by date %s: %w", date, err)
	}
	return fixtures, nil
}

// LiveFixtures lists all matches currently in play.
func (c *Client) LiveFixtures(ctx context.Context) ([]Fixture, error) {
	var fixtures []Fixture
	if err := c.get(ctx, "/fixtures?live=all", &fixtures); err != nil {
		return nil, fmt.Errorf("live fixtures: %w", err)
	}
	return fixtures, nil
}

// TeamStatistics returns the raw season statistics of a team in a league. The
// payload is passed through to the AI untouched, so it stays raw JSON.
func (c *Client) TeamStatistics(ctx context.Context, teamID, leagueID, season int) (json.RawMessage, error) {
	var stats json.RawMessage
	path := fmt.Sprintf("/teams/statistics?league=%d&team=%d&season=%d", leagueID, teamID, season)
	if err := c.get(ctx, path, &stats); err != nil {
		return nil, fmt.Errorf("team statistics %d: %w", teamID, err)
	}
	return stats, nil
}

// HeadToHead returns the raw list of direct encounters between two teams.
func (c *Client) HeadToHead(ctx context.Context, teamA, teamB int) (json.RawMessage, error) {
	var h2h json.RawMessage
	path := fmt.Sprintf("/fixtures/headtohead?h2h=%d-%d", teamA, teamB)
	if err := c.get(ctx, path, &h2h); err != nil {
		return nil, fmt.Errorf("head to head %d-%d: %w", teamA, teamB, err)
	}
	return h2h, nil
}

// FixtureResult fetches the current state of one fixture. ErrNotFound is
// returned when the provider does not know the fixture.
func (c *Client) FixtureResult(ctx context.Context, fixtureID int64) (*FixtureResult, error) {
	var fixtures []Fixture
	if err := c.get(ctx, fmt.Sprintf("/fixtures?id=%d", fixtureID), &fixtures); err != nil {
		return nil, fmt.Errorf("fixture result %d: %w", fixtureID, err)
	}
	if len(fixtures) == 0 {
		return nil, ErrNotFound
	}
	f := fixtures[0]
	res := &FixtureResult{
		StatusShort: f.Info.Status.Short,
		HomeTeam:    f.Teams.Home.Name,
		AwayTeam:    f.Teams.Away.Name,
	}
	if f.Goals.Home != nil {
		res.HomeGoals = *f.Goals.Home
	}
	if f.Goals.Away != nil {
		res.AwayGoals = *f.Goals.Away
	}
	return res, nil
}
