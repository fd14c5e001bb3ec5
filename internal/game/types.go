package game

import (
	"encoding/json"

	"example.com/wordlink/internal/puzzle"
)

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client -> server
const (
	MsgSubmitGuess = "submit_guess"
	MsgGetState    = "get_state"
)

// server -> client
const (
	MsgState       = "state"
	MsgGuessResult = "guess_result"
	MsgError       = "error"
)

type SubmitGuessPayload struct {
	Words []string `json:"words"`
}

type GuessResultPayload struct {
	GuessOutcome
	Session Session `json:"session"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StartRequest struct {
	PuzzleID string `json:"puzzleId"`
	Username string `json:"username,omitempty"`
}

type StartResponse struct {
	SessionID string     `json:"sessionId"`
	Puzzle    PuzzleView `json:"puzzle"`
}

// PuzzleView is what a player receives when a session starts.
type PuzzleView struct {
	ID         string            `json:"id"`
	Words      []string          `json:"words"`
	Categories []puzzle.Category `json:"categories"`
	Difficulty puzzle.Difficulty `json:"difficulty"`
}

type GuessRequest struct {
	SessionID     string   `json:"sessionId"`
	SelectedWords []string `json:"selectedWords"`
}
