package handler

import (
	"context"
	"net/http"

	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

type bookOp func(context.Context, *domain.Snapshot) (*domain.Snapshot, error)

// bookHandler decodes the posted snapshot, runs op and writes the
// resulting snapshot.
func (h *Handler) bookHandler(op bookOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readBody(w, r)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		snap, err := domain.DecodeSnapshot(data)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		ctx := logger.WithClient(r.Context(), snap.Client)
		out, err := op(ctx, snap)
		if err != nil {
			h.handleServiceError(w, r.WithContext(ctx), err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, out)
	}
}
