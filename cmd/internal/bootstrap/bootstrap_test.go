package bootstrap

import (
	"reflect"
	"testing"

	site "github.com/goliatone/go-site"
)

func TestSplitList(t *testing.T) {
	got := SplitList(" blog/launch , ,heroes ")
	want := []string{"blog/launch", "heroes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if SplitList("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestBuildModuleAppliesConfigure(t *testing.T) {
	module, err := BuildModule(Options{
		Configure: func(cfg *site.Config) {
			cfg.Storage.Provider = "memory"
			cfg.Features.Logger = false
			cfg.Site.Name = "Acme"
		},
	})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	t.Cleanup(func() { module.Module.Close() })

	if module.Config.Site.Name != "Acme" {
		t.Fatalf("expected configured name, got %q", module.Config.Site.Name)
	}
	if module.Logger == nil {
		t.Fatalf("expected logger")
	}
}
