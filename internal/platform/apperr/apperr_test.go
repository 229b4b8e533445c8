package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{NotFound("patient %s not found", "P001"), KindNotFound},
		{Forbidden("not the referring practitioner"), KindForbidden},
		{Conflict("username taken"), KindConflict},
		{Invalid("valid_until must be in the future"), KindInvalid},
		{CreateFailed("persist item", errors.New("fk violation")), KindCreateFailed},
		{UpdateFailed("persist item", errors.New("fk violation")), KindUpdateFailed},
		{DeleteFailed("remove credential", errors.New("provider down")), KindDeleteFailed},
		{errors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create delegation: %w", NotFound("practitioner D009 not found"))
	if !IsKind(err, KindNotFound) {
		t.Errorf("expected wrapped error to keep KindNotFound, got %v", KindOf(err))
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("duplicate key")
	err := CreateFailed("persist credential", cause)

	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatal("expected *Error")
	}
	if ae.Message() != "persist credential" {
		t.Errorf("unexpected message: %s", ae.Message())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if err.Error() != "persist credential: duplicate key" {
		t.Errorf("unexpected Error(): %s", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Forbidden("x"), http.StatusForbidden},
		{Conflict("x"), http.StatusConflict},
		{Invalid("x"), http.StatusBadRequest},
		{CreateFailed("x", nil), http.StatusConflict},
		{UpdateFailed("x", nil), http.StatusConflict},
		{DeleteFailed("x", nil), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindNotFound.String() != "not_found" {
		t.Errorf("unexpected: %s", KindNotFound)
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("unexpected: %s", Kind(99))
	}
}
