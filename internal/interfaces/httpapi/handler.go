package httpapi

import (
	"net/http"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListFormations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFormations")
	defer span.End()

	items := h.builder.ListFormations(ctx)
	out := make([]formationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, formationToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSubmissions")
	defer span.End()

	matchID := r.PathValue("matchID")
	items, err := h.builder.ListSubmissions(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list lineup submissions failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]submissionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, submissionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
