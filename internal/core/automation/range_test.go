package automation

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

func openSheet(t *testing.T, values [][]any) (*Book, *Sheet) {
	t.Helper()
	snap := newSnapshot("Sheet1")
	snap.Sheets[0].Values = values
	b, err := Open(snap)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return b, b.Sheets()[0]
}

func TestRange_Value(t *testing.T) {
	_, s := openSheet(t, [][]any{{"Hello xlwings!", 2.0}, {true, nil}})

	a1, _ := s.Range("A1")
	if got := a1.Value(); got != "Hello xlwings!" {
		t.Errorf("A1 = %v, want %q", got, "Hello xlwings!")
	}

	outside, _ := s.Range("Z99")
	if got := outside.Value(); got != nil {
		t.Errorf("Z99 = %v, want nil", got)
	}

	block, _ := s.Range("A1:B3")
	want := [][]any{{"Hello xlwings!", 2.0}, {true, nil}, {nil, nil}}
	if got := block.Value(); !reflect.DeepEqual(got, want) {
		t.Errorf("A1:B3 = %v, want %v", got, want)
	}
}

func TestRange_SetValue_Scalar(t *testing.T) {
	b, s := openSheet(t, [][]any{{"Hello xlwings!"}})

	a1, _ := s.Range("A1")
	if err := a1.SetValue("Bye xlwings!"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if got := a1.Value(); got != "Bye xlwings!" {
		t.Errorf("A1 = %v, want %q", got, "Bye xlwings!")
	}

	actions := b.Actions()
	if len(actions) != 1 {
		t.Fatalf("len(actions) = %d, want 1", len(actions))
	}
	a := actions[0]
	if a.Func != domain.ActionSetValues || *a.StartRow != 0 || *a.StartColumn != 0 || *a.RowCount != 1 || *a.ColumnCount != 1 {
		t.Errorf("action = %+v", a)
	}
	if !reflect.DeepEqual(a.Values, [][]any{{"Bye xlwings!"}}) {
		t.Errorf("action values = %v", a.Values)
	}
}

func TestRange_SetValue_Broadcast(t *testing.T) {
	_, s := openSheet(t, nil)
	r, _ := s.Range("B2:C3")
	if err := r.SetValue(7); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	want := [][]any{{nil, nil, nil}, {nil, 7.0, 7.0}, {nil, 7.0, 7.0}}
	if got := s.UsedRange().Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestRange_SetValue_GridExpands(t *testing.T) {
	b, s := openSheet(t, [][]any{{"a"}})
	r, _ := s.Range("B2")
	if err := r.SetValue([][]any{{1, 2}, {3}}); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	want := [][]any{{"a", nil, nil}, {nil, 1.0, 2.0}, {nil, 3.0, nil}}
	if got := s.UsedRange().Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}

	a := b.Actions()[0]
	if *a.StartRow != 1 || *a.StartColumn != 1 || *a.RowCount != 2 || *a.ColumnCount != 2 {
		t.Errorf("action positions = %d,%d,%d,%d", *a.StartRow, *a.StartColumn, *a.RowCount, *a.ColumnCount)
	}
}

func TestRange_SetValue_Types(t *testing.T) {
	_, s := openSheet(t, nil)
	r, _ := s.Range("A1")

	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if err := r.SetValue([]any{int64(1), float32(1.5), when, false, nil}); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	want := []any{1.0, 1.5, "2024-03-01T12:30:00", false, nil}
	if got := s.UsedRange().Values()[0]; !reflect.DeepEqual(got, want) {
		t.Errorf("row = %v, want %v", got, want)
	}

	if err := r.SetValue(struct{}{}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("SetValue(struct) error = %v, want ErrInvalidValue", err)
	}
	if err := r.SetValue([][]any{}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("SetValue(empty) error = %v, want ErrInvalidValue", err)
	}
}

func TestRange_SetValue_OutOfBounds(t *testing.T) {
	_, s := openSheet(t, nil)
	r, _ := s.Range("XFD1")
	if err := r.SetValue([]string{"a", "b"}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("SetValue() past last column error = %v, want ErrInvalidValue", err)
	}
}

func TestRange_ClearContents(t *testing.T) {
	b, s := openSheet(t, [][]any{{1.0, 2.0}, {3.0, 4.0}})
	r, _ := s.Range("B1:C5")
	if err := r.ClearContents(); err != nil {
		t.Fatalf("ClearContents() error = %v", err)
	}
	want := [][]any{{1.0, nil}, {3.0, nil}}
	if got := s.UsedRange().Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
	if b.Actions()[0].Func != domain.ActionClearContents {
		t.Errorf("action = %q, want clearContents", b.Actions()[0].Func)
	}
}

func TestRange_Formatting(t *testing.T) {
	b, s := openSheet(t, nil)
	r, _ := s.Range("A1:B2")

	if err := r.SetColor("#FF0000"); err != nil {
		t.Errorf("SetColor() error = %v", err)
	}
	if err := r.SetColor("red"); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("SetColor(red) error = %v, want ErrInvalidValue", err)
	}
	if err := r.SetColor(""); err != nil {
		t.Errorf("SetColor(\"\") error = %v", err)
	}
	if err := r.SetNumberFormat("0.00%"); err != nil {
		t.Errorf("SetNumberFormat() error = %v", err)
	}

	actions := b.Actions()
	if len(actions) != 3 {
		t.Fatalf("len(actions) = %d, want 3", len(actions))
	}
	if actions[1].Args[0] != nil {
		t.Errorf("clearing the color should send null, got %v", actions[1].Args[0])
	}
	if actions[2].Func != domain.ActionSetNumberFormat || actions[2].Args[0] != "0.00%" {
		t.Errorf("number format action = %+v", actions[2])
	}
}

func TestRange_AddHyperlink(t *testing.T) {
	b, s := openSheet(t, nil)
	r, _ := s.Range("C3:D4")

	if err := r.AddHyperlink("https://example.com", "", "tip"); err != nil {
		t.Fatalf("AddHyperlink() error = %v", err)
	}
	c3, _ := s.Range("C3")
	if got := c3.Value(); got != "https://example.com" {
		t.Errorf("C3 = %v, want the address", got)
	}
	a := b.Actions()[0]
	if *a.RowCount != 1 || *a.ColumnCount != 1 || a.Args[2] != "tip" {
		t.Errorf("hyperlink action = %+v", a)
	}

	if err := r.AddHyperlink("", "text", ""); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("AddHyperlink(\"\") error = %v, want ErrInvalidValue", err)
	}
}

func TestRange_ClosedBook(t *testing.T) {
	b, s := openSheet(t, nil)
	r, _ := s.Range("A1")
	b.Close()

	if err := r.SetValue("x"); !errors.Is(err, domain.ErrBookClosed) {
		t.Errorf("SetValue() on closed book error = %v, want ErrBookClosed", err)
	}
	if err := r.ClearContents(); !errors.Is(err, domain.ErrBookClosed) {
		t.Errorf("ClearContents() on closed book error = %v, want ErrBookClosed", err)
	}
}
