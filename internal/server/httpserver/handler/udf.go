package handler

import (
	"net/http"

	"github.com/yndnr/xlremote-go/internal/core/udf"
)

// handleFunctionsMeta handles GET /xlwings/custom-functions-meta.
func (h *Handler) handleFunctionsMeta(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.functions.Meta(r.Context()))
}

// handleFunctionsCode handles GET /xlwings/custom-functions-code.
func (h *Handler) handleFunctionsCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.functions.Code(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(code)
}

// handleFunctionsCall handles POST /xlwings/custom-functions-call.
func (h *Handler) handleFunctionsCall(w http.ResponseWriter, r *http.Request) {
	var req udf.CallRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	result, err := h.functions.Call(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, callResult{Result: result})
}
