package apperr

import (
	"fmt"
	"testing"
)

func TestUserMessage_Wrapped(t *testing.T) {
	err := fmt.Errorf("recommend: search: %w", fmt.Errorf("%w: candidate text empty", ErrNoResults))
	if got := UserMessage(err); got != "No results found. Try a different description." {
		t.Errorf("message = %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("nil message = %q, want empty", got)
	}
	if got := UserMessage(fmt.Errorf("boom")); got == "" {
		t.Error("unknown errors still need a message")
	}
}
