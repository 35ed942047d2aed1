package services_test

import (
	"errors"
	"strings"
	"testing"

	"cardpress/internal/runlog"
	"cardpress/internal/services"
)

func TestWrapBuildsDetail(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "render", "invoke renderer", "renderer exited abnormally", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Error("marker lost")
	}
	if !errors.Is(err, base) {
		t.Error("cause lost")
	}
	for _, want := range []string{"render", "invoke renderer", "renderer exited abnormally"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("detail %q missing from %q", want, err.Error())
		}
	}
}

func TestWrapNilMarker(t *testing.T) {
	err := services.Wrap(nil, "stage", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Error("nil marker must default to transient")
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want runlog.Status
	}{
		{services.Wrap(services.ErrValidation, "s", "o", "m", nil), runlog.StatusReview},
		{services.Wrap(services.ErrConfiguration, "s", "o", "m", nil), runlog.StatusReview},
		{services.Wrap(services.ErrNotFound, "s", "o", "m", nil), runlog.StatusReview},
		{services.Wrap(services.ErrExternalTool, "s", "o", "m", nil), runlog.StatusFailed},
		{errors.New("anything else"), runlog.StatusFailed},
	}
	for _, tc := range cases {
		if got := services.FailureStatus(tc.err); got != tc.want {
			t.Errorf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
