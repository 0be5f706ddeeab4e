package automation

import (
	"errors"
	"testing"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

func TestNames_Add(t *testing.T) {
	b, _ := Open(newSnapshot("Sheet1", "data"))
	names := b.Names()

	if err := names.Add("rate", "=data!$B$2"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	n, ok := names.Get("RATE")
	if !ok {
		t.Fatal("Get(RATE) not found")
	}
	if n.SheetIndex != 1 || n.Address != "B2" || !n.BookScope {
		t.Errorf("name = %+v", n)
	}

	// Replacing keeps a single entry.
	if err := names.Add("Rate", "=Sheet1!A1:B2"); err != nil {
		t.Fatalf("Add() replace error = %v", err)
	}
	if len(names.All()) != 1 {
		t.Errorf("len(All()) = %d, want 1", len(names.All()))
	}
	if len(b.Actions()) != 2 || b.Actions()[1].Func != domain.ActionNamesAdd {
		t.Errorf("actions = %+v", b.Actions())
	}
}

func TestNames_Add_Invalid(t *testing.T) {
	b, _ := Open(newSnapshot("Sheet1"))
	names := b.Names()

	tests := []struct {
		name     string
		refersTo string
		want     error
	}{
		{"1abc", "=Sheet1!A1", domain.ErrInvalidName},
		{"has space", "=Sheet1!A1", domain.ErrInvalidName},
		{"AB12", "=Sheet1!A1", domain.ErrInvalidName},
		{"ok", "=A1", domain.ErrInvalidAddress},
		{"ok", "=missing!A1", domain.ErrSheetNotFound},
		{"ok", "=Sheet1!nope", domain.ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name+tt.refersTo, func(t *testing.T) {
			if err := names.Add(tt.name, tt.refersTo); !errors.Is(err, tt.want) {
				t.Errorf("Add(%q, %q) error = %v, want %v", tt.name, tt.refersTo, err, tt.want)
			}
		})
	}
}
