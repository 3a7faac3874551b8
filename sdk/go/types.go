package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Rank mirrors one tier of the rank ladder.
type Rank struct {
	Name      string `json:"name"`
	Threshold int64  `json:"point_threshold"`
}

// RankStatus mirrors the derived rank view. Next is nil at the top rank.
type RankStatus struct {
	Current  Rank  `json:"current"`
	Next     *Rank `json:"next,omitempty"`
	Progress int   `json:"progress_percent"`
}

// BadgeResult mirrors the latch state of one badge.
type BadgeResult struct {
	ID           string `json:"id"`
	Unlocked     bool   `json:"unlocked"`
	JustUnlocked bool   `json:"just_unlocked"`
}

// Evaluation mirrors the public JSON surface of an evaluation pass.
type Evaluation struct {
	UserID   string        `json:"user_id"`
	Score    int64         `json:"score"`
	Rank     RankStatus    `json:"rank"`
	Badges   []BadgeResult `json:"badges"`
	RankedUp bool          `json:"ranked_up"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// APIError is a structured error response from the server.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("request failed: status %d", e.Status)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		body, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
