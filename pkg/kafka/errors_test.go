package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeUnknown},
		{name: "explicit transient", err: NewTransientError("x", nil), want: ErrorTypeTransient},
		{name: "explicit permanent", err: NewPermanentError("x", nil), want: ErrorTypePermanent},
		{name: "wrapped explicit", err: fmt.Errorf("handler: %w", NewTransientError("x", nil)), want: ErrorTypeTransient},
		{name: "deadline", err: fmt.Errorf("refresh: %w", context.DeadlineExceeded), want: ErrorTypeTransient},
		{name: "connection refused", err: errors.New("dial tcp: Connection Refused"), want: ErrorTypeTransient},
		{name: "unknown", err: errors.New("unexpected end of JSON input"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("x", nil)

	if !ShouldRetry(transient, 0, 3) {
		t.Error("transient error under the limit should retry")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("retry limit reached should not retry")
	}
	if ShouldRetry(NewPermanentError("x", nil), 0, 3) {
		t.Error("permanent error should not retry")
	}
	if ShouldRetry(nil, 0, 3) {
		t.Error("nil error should not retry")
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Error("Build() should report an unencodable value")
	}
}
