package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/lineup-builder/internal/usecase"
)

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSession")
	defer span.End()

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.RequestedBy) == "" {
		if requester, ok := requesterFromContext(ctx); ok {
			req.RequestedBy = requester
		}
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.builder.StartSession(ctx, usecase.StartSessionInput{
		MatchID:     req.MatchID,
		TeamID:      req.TeamID,
		RequestedBy: req.RequestedBy,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start lineup session failed", "match_id", req.MatchID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Location", "/v1/lineup-sessions/"+session.ID)
	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(ctx, session))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	session, err := h.builder.GetSession(ctx, r.PathValue("sessionID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, session))
}

func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AbandonSession")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	if err := h.builder.AbandonSession(ctx, sessionID); err != nil {
		h.logger.WarnContext(ctx, "abandon lineup session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": sessionID, "status": "abandoned"})
}

func (h *Handler) ReloadRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReloadRoster")
	defer span.End()

	h.respondSession(ctx, w, "reload roster", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.ReloadRoster(ctx, sessionID)
	})
}

func (h *Handler) SelectFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectFormation")
	defer span.End()

	var req selectFormationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.respondSession(ctx, w, "select formation", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.SelectFormation(ctx, sessionID, req.FormationID)
	})
}

func (h *Handler) AssignToPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignToPosition")
	defer span.End()

	var req assignPositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	position := r.PathValue("position")
	h.respondSession(ctx, w, "assign position", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.AssignToPosition(ctx, sessionID, req.PlayerID, position)
	})
}

func (h *Handler) RemoveFromPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveFromPosition")
	defer span.End()

	position := r.PathValue("position")
	h.respondSession(ctx, w, "remove from position", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.RemoveFromPosition(ctx, sessionID, position)
	})
}

func (h *Handler) AddToBench(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddToBench")
	defer span.End()

	playerID := r.PathValue("playerID")
	h.respondSession(ctx, w, "add to bench", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.AddToBench(ctx, sessionID, playerID)
	})
}

func (h *Handler) RemoveFromBench(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveFromBench")
	defer span.End()

	playerID := r.PathValue("playerID")
	h.respondSession(ctx, w, "remove from bench", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.RemoveFromBench(ctx, sessionID, playerID)
	})
}

func (h *Handler) SetCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCaptain")
	defer span.End()

	var req setCaptainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.respondSession(ctx, w, "set captain", r.PathValue("sessionID"), func(ctx context.Context, sessionID string) (usecase.LineupSession, error) {
		return h.builder.SetCaptain(ctx, sessionID, req.PlayerID)
	})
}

func (h *Handler) ClearCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCaptain")
	defer span.End()

	h.respondSession(ctx, w, "clear captain", r.PathValue("sessionID"), h.builder.ClearCaptain)
}

func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AutoAssign")
	defer span.End()

	h.respondSession(ctx, w, "auto assign", r.PathValue("sessionID"), h.builder.AutoAssign)
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearAll")
	defer span.End()

	h.respondSession(ctx, w, "clear lineup", r.PathValue("sessionID"), h.builder.ClearAll)
}

func (h *Handler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateSession")
	defer span.End()

	verr, err := h.builder.Validate(ctx, r.PathValue("sessionID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, validationToDTO(verr))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Submit")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	outcome, err := h.builder.Submit(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "submit lineup failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, submissionToDTO(outcome.Record))
}

func (h *Handler) respondSession(
	ctx context.Context,
	w http.ResponseWriter,
	action string,
	sessionID string,
	op func(context.Context, string) (usecase.LineupSession, error),
) {
	session, err := op(ctx, sessionID)
	if err != nil {
		h.logger.InfoContext(ctx, action+" rejected", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, session))
}
