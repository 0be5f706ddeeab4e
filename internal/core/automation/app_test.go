package automation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

func TestApp_Alert(t *testing.T) {
	b, _ := Open(newSnapshot("Sheet1"))

	err := b.App().Alert("This will capitalize all sheet names!", AlertOptions{
		Title:    "Are you sure?",
		Buttons:  ButtonsOKCancel,
		Callback: "capitalizeSheetNames",
	})
	if err != nil {
		t.Fatalf("Alert() error = %v", err)
	}

	a := b.Actions()[0]
	want := []any{"This will capitalize all sheet names!", "Are you sure?", "ok_cancel", "", "capitalizeSheetNames"}
	if a.Func != domain.ActionAlert || !reflect.DeepEqual(a.Args, want) {
		t.Errorf("alert action = %+v", a)
	}
	if a.SheetPosition != nil || a.StartRow != nil {
		t.Error("alert action should not carry positions")
	}
}

func TestApp_Alert_Defaults(t *testing.T) {
	b, _ := Open(newSnapshot("Sheet1"))
	if err := b.App().Alert("hi", AlertOptions{}); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if got := b.Actions()[0].Args[2]; got != ButtonsOK {
		t.Errorf("default buttons = %v, want ok", got)
	}
}

func TestApp_Alert_Invalid(t *testing.T) {
	b, _ := Open(newSnapshot("Sheet1"))

	tests := []struct {
		name string
		opts AlertOptions
	}{
		{"bad buttons", AlertOptions{Buttons: "maybe"}},
		{"bad mode", AlertOptions{Mode: "warning"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.App().Alert("x", tt.opts)
			if !errors.Is(err, domain.ErrInvalidAlert) {
				t.Errorf("Alert() error = %v, want ErrInvalidAlert", err)
			}
		})
	}
	if len(b.Actions()) != 0 {
		t.Error("invalid alerts should not be recorded")
	}
}

func TestMacro_Run(t *testing.T) {
	b, _ := Open(newSnapshot("Sheet1"))

	if err := b.App().Macro("wrapText").Run("A1", 3); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	a := b.Actions()[0]
	if a.Func != domain.ActionRunMacro || !reflect.DeepEqual(a.Args, []any{"wrapText", "A1", 3.0}) {
		t.Errorf("macro action = %+v", a)
	}

	if err := b.App().Macro("").Run(); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("Run() without name error = %v, want ErrInvalidValue", err)
	}
}
