package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/powergrid/internal/levels"
)

func TestRegisterBuiltin(t *testing.T) {
	reset()
	t.Cleanup(reset)

	if err := RegisterBuiltin(); err != nil {
		t.Fatalf("RegisterBuiltin failed: %v", err)
	}
	if err := RegisterBuiltin(); err != nil {
		t.Fatalf("second RegisterBuiltin failed: %v", err)
	}

	list := List()
	if len(list) != levels.CampaignLength {
		t.Fatalf("expected %d levels, got %d", levels.CampaignLength, len(list))
	}
	for i, info := range list {
		if info.Number != i+1 {
			t.Errorf("position %d holds level %d", i, info.Number)
		}
		if info.Source != "builtin" {
			t.Errorf("level %s has source %q", info.ID, info.Source)
		}
	}

	d, err := Get("level03")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if d.Name != "Countryside" {
		t.Errorf("expected Countryside, got %q", d.Name)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reset()
	t.Cleanup(reset)

	d := levels.Custom(1)
	Register(d, "test")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(d, "test")
}

func TestRegisterDir(t *testing.T) {
	reset()
	t.Cleanup(reset)

	if err := RegisterBuiltin(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	files := map[string]string{
		"alpha.yaml": "id: alpha\nname: Alpha\nsize: {w: 4, h: 4}\n",
		"dup.yaml":   "id: level01\nname: Clash\nsize: {w: 4, h: 4}\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	skipped, err := RegisterDir(dir)
	if err != nil {
		t.Fatalf("RegisterDir failed: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != "level01" {
		t.Errorf("expected level01 skipped, got %v", skipped)
	}

	list := List()
	last := list[len(list)-1]
	if last.ID != "alpha" || last.Number != 0 {
		t.Errorf("free-standing levels should sort after the campaign, got %+v", last)
	}

	if _, err := Get("missing"); err == nil {
		t.Error("expected error for unknown level")
	}
}
