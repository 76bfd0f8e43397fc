package notify

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/utils"
)

func TestQueryFinished(t *testing.T) {
	mock := &mockBackend{}
	cfg := config.NotificationConfig{
		Enabled:     true,
		MinDuration: "10s",
	}

	nt := New(cfg, WithBackend(mock))

	elapsed := 2 * time.Minute
	err := nt.QueryFinished("Revenue by month", 12345, elapsed)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.notifyCalls) != 1 {
		t.Fatalf("expected 1 notify call, got %d", len(mock.notifyCalls))
	}

	call := mock.notifyCalls[0]
	expectedTitle := "mbr: Query Finished"
	if call.title != expectedTitle {
		t.Errorf("expected title %q, got %q", expectedTitle, call.title)
	}

	expectedMessage := fmt.Sprintf("'Revenue by month' finished in %s.\nRows: %s", utils.FormatDuration(elapsed), utils.FormatCount(12345))
	if call.message != expectedMessage {
		t.Errorf("expected message %q, got %q", expectedMessage, call.message)
	}

	if call.iconPath != "" {
		t.Errorf("expected empty iconPath, got %q", call.iconPath)
	}
}

func TestQueryFinishedUnderThreshold(t *testing.T) {
	mock := &mockBackend{}
	cfg := config.NotificationConfig{
		Enabled:     true,
		MinDuration: "10s",
	}

	nt := New(cfg, WithBackend(mock))

	err := nt.QueryFinished("Revenue by month", 10, 3*time.Second)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.notifyCalls) != 0 {
		t.Errorf("expected no notify calls under the threshold, got %d", len(mock.notifyCalls))
	}
}

func TestQueryFinishedDisabled(t *testing.T) {
	mock := &mockBackend{}
	cfg := config.NotificationConfig{
		Enabled: false,
	}

	nt := New(cfg, WithBackend(mock))

	err := nt.QueryFinished("Revenue by month", 10, time.Hour)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.notifyCalls) != 0 {
		t.Errorf("expected no notify calls when disabled, got %d", len(mock.notifyCalls))
	}
}

func TestQueryFinishedDefaultThreshold(t *testing.T) {
	mock := &mockBackend{}
	cfg := config.NotificationConfig{
		Enabled: true,
	}

	nt := New(cfg, WithBackend(mock))

	// 9s sits under the 10s default, 10s meets it.
	if err := nt.QueryFinished("Active users", 1, 9*time.Second); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if len(mock.notifyCalls) != 0 {
		t.Fatalf("expected no notify calls under the default threshold, got %d", len(mock.notifyCalls))
	}

	if err := nt.QueryFinished("Active users", 1, 10*time.Second); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if len(mock.notifyCalls) != 1 {
		t.Errorf("expected 1 notify call at the default threshold, got %d", len(mock.notifyCalls))
	}
}

func TestQueryFailed(t *testing.T) {
	mock := &mockBackend{}
	cfg := config.NotificationConfig{
		Enabled:     true,
		MinDuration: "10s",
	}

	nt := New(cfg, WithBackend(mock))

	cause := errors.New("connection timeout")
	elapsed := 45 * time.Second
	err := nt.QueryFailed("Revenue by month", elapsed, cause)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.alertCalls) != 1 {
		t.Fatalf("expected 1 alert call, got %d", len(mock.alertCalls))
	}

	call := mock.alertCalls[0]
	expectedTitle := "mbr: Query Failed"
	if call.title != expectedTitle {
		t.Errorf("expected title %q, got %q", expectedTitle, call.title)
	}

	expectedMessage := fmt.Sprintf("'Revenue by month' failed after %s.\nError: %v", utils.FormatDuration(elapsed), cause)
	if call.message != expectedMessage {
		t.Errorf("expected message %q, got %q", expectedMessage, call.message)
	}
}

func TestQueryFailedUnderThreshold(t *testing.T) {
	mock := &mockBackend{}
	cfg := config.NotificationConfig{
		Enabled:     true,
		MinDuration: "10s",
	}

	nt := New(cfg, WithBackend(mock))

	err := nt.QueryFailed("Revenue by month", time.Second, errors.New("boom"))
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.alertCalls) != 0 {
		t.Errorf("expected no alert calls under the threshold, got %d", len(mock.alertCalls))
	}
}

func TestNotifyBackendError(t *testing.T) {
	expectedErr := errors.New("backend error")
	mock := &mockBackend{
		notifyFunc: func(title, message, iconPath string) error {
			return expectedErr
		},
		alertFunc: func(title, message, iconPath string) error {
			return expectedErr
		},
	}

	cfg := config.NotificationConfig{
		Enabled:     true,
		MinDuration: "1s",
	}

	nt := New(cfg, WithBackend(mock))

	err := nt.QueryFinished("Revenue by month", 10, time.Minute)
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}

	err = nt.QueryFailed("Revenue by month", time.Minute, errors.New("boom"))
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}
