package service

import (
	"context"
	"strings"

	"github.com/yndnr/xlremote-go/internal/core/automation"
	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

const (
	helloText = "Hello xlwings!"
	byeText   = "Bye xlwings!"
)

// BookService runs the snapshot-mutation operations.
type BookService struct {
	clientVersion string
	observer      Observer
}

// NewBookService creates a BookService. A non-empty clientVersion is
// enforced on every posted snapshot. observer may be nil.
func NewBookService(clientVersion string, observer Observer) *BookService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &BookService{
		clientVersion: clientVersion,
		observer:      observer,
	}
}

// Hello toggles cell A1 of the first sheet between "Hello xlwings!" and
// "Bye xlwings!". Any other content is replaced by "Hello xlwings!".
func (s *BookService) Hello(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	return s.run(ctx, "hello", snap, func(book *automation.Book) error {
		sheet, err := book.Sheet(0)
		if err != nil {
			return err
		}
		cell, err := sheet.Range("A1")
		if err != nil {
			return err
		}
		if cell.Value() == helloText {
			return cell.SetValue(byeText)
		}
		return cell.SetValue(helloText)
	})
}

// CapitalizeSheetNamesPrompt asks the user to confirm before the sheet
// names are capitalized. The client calls capitalizeSheetNames when the
// user clicks a button.
func (s *BookService) CapitalizeSheetNamesPrompt(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	return s.run(ctx, "capitalize_sheet_names_prompt", snap, func(book *automation.Book) error {
		return book.App().Alert("This will capitalize all sheet names!", automation.AlertOptions{
			Title:    "Are you sure?",
			Buttons:  automation.ButtonsOKCancel,
			Callback: "capitalizeSheetNames",
		})
	})
}

// CapitalizeSheetNames upper-cases the name of every sheet.
func (s *BookService) CapitalizeSheetNames(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	return s.run(ctx, "capitalize_sheet_names", snap, func(book *automation.Book) error {
		for _, sheet := range book.Sheets() {
			if err := sheet.SetName(strings.ToUpper(sheet.Name())); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BookService) run(ctx context.Context, op string, snap *domain.Snapshot, fn func(*automation.Book) error) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := automation.With(snap, fn, automation.WithClientVersion(s.clientVersion))
	if err != nil {
		s.observer.ObserveError(err)
		logger.L(ctx).Warn("book operation failed", "op", op, "error", err)
		return nil, err
	}

	s.observer.ObserveActions(out.Actions)
	logger.L(ctx).Debug("book operation done",
		"op", op,
		"sheets", len(out.Sheets),
		"actions", len(out.Actions),
	)
	return out, nil
}
