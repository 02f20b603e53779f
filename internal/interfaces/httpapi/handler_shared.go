package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"github.com/riskibarqy/lineup-builder/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	builder   *usecase.LineupBuilderService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(builder *usecase.LineupBuilderService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		builder:   builder,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeJSON reads a single JSON object and rejects unknown fields.
func decodeJSON(r *http.Request, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type startSessionRequest struct {
	MatchID     string `json:"match_id" validate:"required,max=64"`
	TeamID      string `json:"team_id" validate:"required,max=64"`
	RequestedBy string `json:"requested_by" validate:"omitempty,max=128"`
}

type selectFormationRequest struct {
	FormationID string `json:"formation_id" validate:"required"`
}

type assignPositionRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type setCaptainRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type formationDTO struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Positions []string `json:"positions"`
	Size      int      `json:"size"`
}

type positionSlotDTO struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id,omitempty"`
}

type sessionPlayerDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Number           int    `json:"number"`
	Position         string `json:"position"`
	IsAvailable      bool   `json:"is_available"`
	IsSelected       bool   `json:"is_selected"`
	AssignedPosition string `json:"assigned_position,omitempty"`
	Role             string `json:"role,omitempty"`
	IsCaptain        bool   `json:"is_captain"`
}

type lineupSessionDTO struct {
	ID          string             `json:"id"`
	MatchID     string             `json:"match_id"`
	TeamID      string             `json:"team_id"`
	RequestedBy string             `json:"requested_by,omitempty"`
	FormationID string             `json:"formation_id,omitempty"`
	CaptainID   string             `json:"captain_id,omitempty"`
	Slots       []positionSlotDTO  `json:"slots"`
	Players     []sessionPlayerDTO `json:"players"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

type validationDTO struct {
	Valid            bool     `json:"valid"`
	Code             string   `json:"code,omitempty"`
	Message          string   `json:"message,omitempty"`
	MissingPositions []string `json:"missing_positions,omitempty"`
}

type submissionEntryDTO struct {
	PlayerID  string `json:"player_id"`
	Position  string `json:"position"`
	Role      string `json:"role"`
	IsCaptain bool   `json:"is_captain"`
}

type submissionDTO struct {
	ID            string               `json:"id"`
	MatchID       string               `json:"match_id"`
	TeamID        string               `json:"team_id"`
	FormationID   string               `json:"formation_id"`
	RequestedBy   string               `json:"requested_by,omitempty"`
	RemoteMessage string               `json:"remote_message,omitempty"`
	SubmittedAt   string               `json:"submitted_at"`
	Players       []submissionEntryDTO `json:"players"`
}

func formationToDTO(v formation.Formation) formationDTO {
	return formationDTO{
		ID:        v.ID,
		Label:     v.Label,
		Positions: append([]string(nil), v.Positions...),
		Size:      v.Size(),
	}
}

func sessionToDTO(ctx context.Context, v usecase.LineupSession) lineupSessionDTO {
	_, span := startSpan(ctx, "httpapi.sessionToDTO")
	defer span.End()

	out := lineupSessionDTO{
		ID:          v.ID,
		MatchID:     v.Session.MatchID,
		TeamID:      v.Session.TeamID,
		RequestedBy: v.Session.RequestedBy,
		FormationID: v.FormationID,
		CaptainID:   v.CaptainID,
		Slots:       make([]positionSlotDTO, 0, len(v.Slots)),
		Players:     make([]sessionPlayerDTO, 0, len(v.Players)),
		CreatedAt:   formatTime(v.CreatedAt),
		UpdatedAt:   formatTime(v.UpdatedAt),
	}
	for _, slot := range v.Slots {
		out.Slots = append(out.Slots, positionSlotDTO{Code: slot.Code, PlayerID: slot.PlayerID})
	}
	for _, p := range v.Players {
		out.Players = append(out.Players, sessionPlayerDTO{
			ID:               p.ID,
			Name:             p.Name,
			Number:           p.Number,
			Position:         p.Position,
			IsAvailable:      p.IsAvailable,
			IsSelected:       p.IsSelected,
			AssignedPosition: p.AssignedPosition,
			Role:             string(p.Role),
			IsCaptain:        p.IsCaptain,
		})
	}
	return out
}

func validationToDTO(verr *lineup.ValidationError) validationDTO {
	if verr == nil {
		return validationDTO{Valid: true}
	}
	return validationDTO{
		Code:             verr.Code,
		Message:          verr.Message,
		MissingPositions: append([]string(nil), verr.MissingSlots...),
	}
}

func submissionToDTO(v lineup.SubmissionRecord) submissionDTO {
	out := submissionDTO{
		ID:            v.ID,
		MatchID:       v.MatchID,
		TeamID:        v.TeamID,
		FormationID:   v.FormationID,
		RequestedBy:   v.RequestedBy,
		RemoteMessage: v.RemoteMessage,
		SubmittedAt:   formatTime(v.SubmittedAt),
		Players:       make([]submissionEntryDTO, 0, len(v.Entries)),
	}
	for _, entry := range v.Entries {
		out.Players = append(out.Players, submissionEntryDTO{
			PlayerID:  entry.PlayerID,
			Position:  entry.Position,
			Role:      string(entry.Role),
			IsCaptain: entry.IsCaptain,
		})
	}
	return out
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
