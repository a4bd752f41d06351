package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"bad request":    {BadRequest("nope"), http.StatusBadRequest},
		"unauthorized":   {Unauthorized("nope"), http.StatusUnauthorized},
		"forbidden":      {Forbidden("nope"), http.StatusForbidden},
		"not found":      {NotFound("nope"), http.StatusNotFound},
		"conflict":       {Conflict("nope"), http.StatusConflict},
		"internal":       {Internal("nope"), http.StatusInternalServerError},
		"plain error":    {errors.New("boom"), http.StatusInternalServerError},
		"wrapped tagged": {fmt.Errorf("op: %w", NotFound("gone")), http.StatusNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Fatalf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageHidesInternals(t *testing.T) {
	if got := Message(errors.New("pq: connection refused")); got != "Internal server error" {
		t.Fatalf("plain error leaked: %q", got)
	}
	if got := Message(BadRequest("Product out of stock")); got != "Product out of stock" {
		t.Fatalf("tagged message lost: %q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := Wrap(cause, KindConflict, "duplicate")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("kind = %v, want conflict", KindOf(err))
	}
}
