// Package apperr holds the sentinel errors shared across layers and their
// user-facing messages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrProfileRequired = errors.New("preference profile not completed")
	ErrGeneration      = errors.New("generation request failed")
	ErrNoResults       = errors.New("no results")
)

// UserMessage returns the text shown to a user for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoResults):
		return "No results found. Try a different description."
	case errors.Is(err, ErrGeneration):
		return "An error occurred while fetching recommendations. Please try again."
	case errors.Is(err, ErrProfileRequired):
		return "Complete the preference form to get recommendations."
	case errors.Is(err, ErrInvalidInput):
		return "Please check your input and try again."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrAlreadyExists):
		return "Already exists."
	default:
		return "Something went wrong. Please try again."
	}
}
