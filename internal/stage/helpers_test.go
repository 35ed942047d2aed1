package stage_test

import (
	"errors"
	"testing"

	"cardpress/internal/runlog"
	"cardpress/internal/services"
	"cardpress/internal/stage"
)

func TestRequirePair(t *testing.T) {
	if err := stage.RequirePair(&runlog.Item{SetID: "core", Language: "English"}, "render"); err != nil {
		t.Errorf("valid item rejected: %v", err)
	}

	for _, item := range []*runlog.Item{nil, {SetID: "core"}, {Language: "English"}} {
		err := stage.RequirePair(item, "render")
		if !errors.Is(err, services.ErrValidation) {
			t.Errorf("item %+v: expected validation error, got %v", item, err)
		}
	}
}

func TestHealthConstructors(t *testing.T) {
	h := stage.Healthy("fingerprint")
	if !h.Ready || h.Name != "fingerprint" {
		t.Errorf("healthy = %+v", h)
	}
	u := stage.Unhealthy("render", "renderer binary missing")
	if u.Ready || u.Detail == "" {
		t.Errorf("unhealthy = %+v", u)
	}
}
