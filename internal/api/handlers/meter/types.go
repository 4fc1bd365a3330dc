package meter

import (
	"time"

	"github.com/5w1tchy/passmeter/internal/security/password"
)

// ===== Requests =====

type PasswordRequest struct {
	Password string `json:"password"`
}

type SimilarityRequest struct {
	Candidate string   `json:"candidate"`
	Reference string   `json:"reference"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// GenerateRequest leaves toggles nil to mean "on".
type GenerateRequest struct {
	Length           *int  `json:"length,omitempty"`
	Lowercase        *bool `json:"lowercase,omitempty"`
	Uppercase        *bool `json:"uppercase,omitempty"`
	Digits           *bool `json:"digits,omitempty"`
	Special          *bool `json:"special,omitempty"`
	RequireEachClass bool  `json:"require_each_class,omitempty"`
}

// ===== Responses =====

type Evaluation struct {
	Score    int               `json:"score"`
	MaxScore int               `json:"max_score"`
	Band     password.Band     `json:"band"`
	Message  string            `json:"message"`
	Feedback []string          `json:"feedback"`
	Estimate password.Estimate `json:"estimate"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SimilarityResponse struct {
	Ratio     float64 `json:"ratio"`
	Threshold float64 `json:"threshold"`
	Similar   bool    `json:"similar"`
}

type GenerateResponse struct {
	Password   string                    `json:"password"`
	Policy     password.GenerationPolicy `json:"policy"`
	Evaluation Evaluation                `json:"evaluation"`
}

type CheckResponse struct {
	Evaluation Evaluation            `json:"evaluation"`
	Entry      password.HistoryEntry `json:"entry"`
}

// SimilarMatch points at a history entry without echoing its password.
type SimilarMatch struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Ratio     float64   `json:"ratio"`
}

type RejectedResponse struct {
	Status  string         `json:"status"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Matches []SimilarMatch `json:"matches"`
}

type HistoryResponse struct {
	Entries []password.HistoryEntry `json:"entries"`
	Count   int                     `json:"count"`
}
