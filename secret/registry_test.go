package secret

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("stub", func(map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", p.Name())
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry()
	factory := func(map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }
	_ = reg.Register("stub", factory)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", reg.Register("stub", factory), ErrDuplicateProvider},
		{"blank name", reg.Register("  ", factory), ErrInvalidProvider},
		{"nil factory", reg.Register("x", nil), ErrInvalidProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}

	if _, err := reg.Create("missing", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Create() error = %v, want %v", err, ErrUnknownProvider)
	}
}

func TestDefaultRegistry(t *testing.T) {
	if got := DefaultRegistry.List(); !slices.Equal(got, []string{"env", "file"}) {
		t.Fatalf("List() = %v, want [env file]", got)
	}

	dir := t.TempDir()
	writeSecret(t, dir, "token", "s3cr3t\n")
	t.Setenv("HEALTHOPS_TOKEN", "from-env")

	r, err := DefaultRegistry.Resolver(true, []string{"env", "file"}, map[string]map[string]any{
		"file": {"dir": dir},
	})
	if err != nil {
		t.Fatalf("Resolver() error = %v", err)
	}

	for input, want := range map[string]string{
		"secretref:env:HEALTHOPS_TOKEN": "from-env",
		"secretref:file:token":          "s3cr3t",
	} {
		got, err := r.ResolveValue(context.Background(), input)
		if err != nil {
			t.Fatalf("ResolveValue(%q) error = %v", input, err)
		}
		if got != want {
			t.Errorf("ResolveValue(%q) = %q, want %q", input, got, want)
		}
	}
}
