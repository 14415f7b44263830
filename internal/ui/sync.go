package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kcr-83/tetris-go/internal/storage"
)

// ScoreSync talks to an optional remote leaderboard. It is configured
// entirely from the environment and disabled when no base URL is set.
type ScoreSync struct {
	enabled bool
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewScoreSyncFromEnv(enabled bool) *ScoreSync {
	baseURL := strings.TrimSpace(os.Getenv("TETRIS_SCORE_API_URL"))
	apiKey := strings.TrimSpace(os.Getenv("TETRIS_SCORE_API_KEY"))
	if baseURL == "" {
		return nil
	}
	// The env switch, when present, overrides the persisted setting.
	if value, ok := os.LookupEnv("TETRIS_SCORE_API_SYNC"); ok {
		enabled = strings.EqualFold(strings.TrimSpace(value), "true")
	}
	return &ScoreSync{
		enabled: enabled,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 4 * time.Second,
		},
	}
}

func (s *ScoreSync) Enabled() bool {
	return s != nil && s.enabled
}

func (s *ScoreSync) SetEnabled(enabled bool) {
	if s != nil {
		s.enabled = enabled
	}
}

func (s *ScoreSync) FetchScoresCmd() tea.Cmd {
	return func() tea.Msg {
		if !s.Enabled() {
			return scoresLoadedMsg{}
		}
		req, err := http.NewRequest(http.MethodGet, s.baseURL+"/scores?limit=10", nil)
		if err != nil {
			return scoresLoadedMsg{err: err}
		}
		if s.apiKey != "" {
			req.Header.Set("X-Api-Key", s.apiKey)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return scoresLoadedMsg{err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return scoresLoadedMsg{err: errUnexpectedStatus(resp.StatusCode)}
		}
		var scores []storage.ScoreEntry
		if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
			return scoresLoadedMsg{err: err}
		}
		return scoresLoadedMsg{scores: scores}
	}
}

func (s *ScoreSync) UploadScoreCmd(entry storage.ScoreEntry) tea.Cmd {
	return func() tea.Msg {
		if !s.Enabled() {
			return scoreUploadedMsg{}
		}
		payload, err := json.Marshal(entry)
		if err != nil {
			return scoreUploadedMsg{err: err}
		}
		req, err := http.NewRequest(http.MethodPost, s.baseURL+"/scores", bytes.NewReader(payload))
		if err != nil {
			return scoreUploadedMsg{err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if s.apiKey != "" {
			req.Header.Set("X-Api-Key", s.apiKey)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return scoreUploadedMsg{err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return scoreUploadedMsg{err: errUnexpectedStatus(resp.StatusCode)}
		}
		return scoreUploadedMsg{}
	}
}

type statusError int

func (s statusError) Error() string {
	return "unexpected status: " + http.StatusText(int(s))
}

func errUnexpectedStatus(code int) error {
	return statusError(code)
}
