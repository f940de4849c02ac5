package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunMain(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	if code := runMain(func() error { return nil }, &stderr); code != 0 {
		t.Fatalf("runMain(success) = %d, want 0", code)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStderr string
	}{
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantCode:   1,
			wantStderr: "boom",
		},
		{
			name:       "canceled",
			err:        context.Canceled,
			wantCode:   130,
			wantStderr: "canceled",
		},
		{
			name:       "exit error with code",
			err:        &exitError{code: 2, err: errors.New("partial failure")},
			wantCode:   2,
			wantStderr: "partial failure",
		},
		{
			name:       "silent exit error",
			err:        &exitError{code: 130, err: context.Canceled, silent: true},
			wantCode:   130,
			wantStderr: "",
		},
		{
			name:       "exit error without cause",
			err:        &exitError{code: 4},
			wantCode:   4,
			wantStderr: "exit status 4",
		},
		{
			name:       "wrapped exit error",
			err:        errors.Join(errors.New("outer"), &exitError{code: 3, err: errors.New("inner")}),
			wantCode:   3,
			wantStderr: "inner",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			if code := exitCodeForError(tt.err, &stderr); code != tt.wantCode {
				t.Fatalf("exitCodeForError() = %d, want %d", code, tt.wantCode)
			}
			got := strings.TrimSpace(stderr.String())
			if tt.wantStderr == "" {
				if got != "" {
					t.Errorf("stderr = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", got, tt.wantStderr)
			}
		})
	}
}
