package service

import (
	"time"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// Observer receives operational signals from the services.
// *metric.Registry implements it.
type Observer interface {
	ObserveActions(actions []domain.Action)
	ObserveError(err error)
	ObserveFunctionCall(name string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveActions([]domain.Action) {}
func (nopObserver) ObserveError(error) {}
func (nopObserver) ObserveFunctionCall(string, time.Duration, error) {}
