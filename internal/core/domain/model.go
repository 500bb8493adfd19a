package domain

import "errors"

// ErrInvalidArgument is returned when a caller violates a precondition, such as
// passing a stop percentage outside [0, 100].
var ErrInvalidArgument = errors.New("invalid argument")

// Result holds the outcome of a similarity computation.
type Result struct {
	Name            string
	Score           float64
	Passed          bool
	QueryLength     int
	CandidateLength int
	Threshold       float64
	Details         map[string]interface{}
}

// Match is a candidate ranked against a query.
type Match struct {
	Candidate string
	// Index is the position of the candidate in the slice handed to the ranker.
	Index int
	Score float64
}
