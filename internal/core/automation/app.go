package automation

import (
	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// Alert button sets.
const (
	ButtonsOK          = "ok"
	ButtonsOKCancel    = "ok_cancel"
	ButtonsYesNo       = "yes_no"
	ButtonsYesNoCancel = "yes_no_cancel"
)

// Alert modes. The empty mode shows no icon.
const (
	ModeInfo     = "info"
	ModeCritical = "critical"
)

// App is the spreadsheet application the book is open in.
type App struct {
	book *Book
}

// AlertOptions configures an alert dialog.
type AlertOptions struct {
	Title string
	// Buttons defaults to ButtonsOK.
	Buttons string
	Mode    string
	// Callback is the client-side function called with the clicked button.
	Callback string
}

// Alert asks the client to show a dialog once it has replayed the actions.
func (a *App) Alert(prompt string, opts AlertOptions) error {
	if err := a.book.check(); err != nil {
		return err
	}
	if opts.Buttons == "" {
		opts.Buttons = ButtonsOK
	}
	switch opts.Buttons {
	case ButtonsOK, ButtonsOKCancel, ButtonsYesNo, ButtonsYesNoCancel:
	default:
		return domain.ErrInvalidAlert.WithDetailsf("buttons must be ok, ok_cancel, yes_no or yes_no_cancel, got %q", opts.Buttons)
	}
	switch opts.Mode {
	case "", ModeInfo, ModeCritical:
	default:
		return domain.ErrInvalidAlert.WithDetailsf("mode must be info or critical, got %q", opts.Mode)
	}

	a.book.record(domain.NewBookAction(domain.ActionAlert, prompt, opts.Title, opts.Buttons, opts.Mode, opts.Callback))
	return nil
}

// Macro returns a handle on a client-side script function.
func (a *App) Macro(name string) *Macro {
	return &Macro{book: a.book, name: name}
}

// Macro is a function defined on the client (for example in Office Scripts
// or Apps Script) that the client runs after replaying the actions.
type Macro struct {
	book *Book
	name string
}

// Run queues the macro with the given arguments.
func (m *Macro) Run(args ...any) error {
	if err := m.book.check(); err != nil {
		return err
	}
	if m.name == "" {
		return domain.ErrInvalidValue.WithDetails("macro name is empty")
	}
	cells := make([]any, 0, len(args)+1)
	cells = append(cells, m.name)
	for _, arg := range args {
		c, err := normalizeCell(arg)
		if err != nil {
			return err
		}
		cells = append(cells, c)
	}
	m.book.record(domain.NewBookAction(domain.ActionRunMacro, cells...))
	return nil
}
