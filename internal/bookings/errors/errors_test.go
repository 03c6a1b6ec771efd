package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConflictError_Is(t *testing.T) {
	err := fmt.Errorf("create: %w", &ConflictError{Room: "Besar", Date: "2024-06-01", Hour: 9})

	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ConflictError should not match ErrNotFound")
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Hour != 9 {
		t.Errorf("expected to recover the slot, got %+v", conflict)
	}
}

func TestConflictError_Message(t *testing.T) {
	err := &ConflictError{Room: "Kecil", Date: "2024-06-01", Hour: 14}
	if !strings.Contains(err.Error(), "room Kecil on 2024-06-01 at 14:00") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestConflictError_Details(t *testing.T) {
	withHolder := (&ConflictError{Room: "Besar", Date: "2024-06-01", Hour: 9, ExistingID: "abc"}).Details()
	if withHolder["existing_id"] != "abc" {
		t.Errorf("expected existing_id, got %v", withHolder)
	}

	anonymous := (&ConflictError{Room: "Besar", Date: "2024-06-01", Hour: 9}).Details()
	if _, ok := anonymous["existing_id"]; ok {
		t.Error("existing_id should be omitted when unknown")
	}
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("failed to insert booking", cause)

	if !errors.Is(err, ErrBackendUnavailable) {
		t.Error("expected ErrBackendUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be kept")
	}
}
