package game

import "example.com/wordlink/internal/apperr"

var (
	ErrSessionNotFound   = apperr.New(apperr.NotFound, "session_not_found", "game session not found")
	ErrPuzzleNotFound    = apperr.New(apperr.NotFound, "puzzle_not_found", "puzzle not found")
	ErrPuzzleNotApproved = apperr.New(apperr.InvalidInput, "puzzle_not_approved", "this puzzle has not been approved yet")
	ErrAlreadyCompleted  = apperr.New(apperr.Conflict, "already_completed", "game session already completed")
	ErrInvalidGuessSize  = apperr.New(apperr.InvalidInput, "invalid_guess_size", "must select exactly 4 words")
	ErrDuplicateWord     = apperr.New(apperr.InvalidInput, "duplicate_word", "selected words must be distinct")
	ErrUnknownWord       = apperr.New(apperr.InvalidInput, "unknown_word", "selected word is not in this puzzle")
	ErrConcurrentUpdate  = apperr.New(apperr.Conflict, "concurrent_update", "session was modified concurrently, retry")
	ErrStore             = apperr.New(apperr.Internal, "store_failure", "session store failure")
)
