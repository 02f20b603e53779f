package tournamentapi

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/domain/match"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// externalID accepts both "12" and 12 from the backend.
type externalID string

func (id *externalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = externalID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", string(data))
	}
	*id = externalID(string(data))
	return nil
}

type playerDTO struct {
	ID          externalID `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Number      int        `json:"number" validate:"gte=0,lte=99"`
	Position    string     `json:"position"`
	IsAvailable *bool      `json:"isAvailable"`
}

type rosterEnvelope struct {
	Data []playerDTO `json:"data" validate:"dive"`
}

type matchDTO struct {
	ID         externalID `json:"id" validate:"required"`
	HomeTeamID externalID `json:"homeTeamId" validate:"required"`
	AwayTeamID externalID `json:"awayTeamId" validate:"required"`
	Status     string     `json:"status"`
	KickoffAt  string     `json:"kickoffAt"`
}

type matchEnvelope struct {
	Data *matchDTO `json:"data" validate:"required"`
}

type submissionEntryDTO struct {
	PlayerID  string `json:"playerId"`
	Position  string `json:"position"`
	Role      string `json:"role"`
	IsCaptain bool   `json:"isCaptain"`
}

type submissionDTO struct {
	MatchID   string               `json:"matchId"`
	Formation string               `json:"formation"`
	Players   []submissionEntryDTO `json:"players"`
}

type submitResponseDTO struct {
	Success *bool  `json:"success" validate:"required"`
	Message string `json:"message"`
}

// parseRoster accepts `{"data":[...]}` or a bare array. Missing
// availability means available.
func parseRoster(raw []byte) ([]player.Player, error) {
	var items []playerDTO
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := sonic.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode roster: %w", err)
		}
	} else {
		var envelope rosterEnvelope
		if err := sonic.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode roster: %w", err)
		}
		items = envelope.Data
	}

	out := make([]player.Player, 0, len(items))
	for i, item := range items {
		if err := validate.Struct(item); err != nil {
			return nil, fmt.Errorf("roster item %d: %w", i, err)
		}
		available := true
		if item.IsAvailable != nil {
			available = *item.IsAvailable
		}
		out = append(out, player.Player{
			ID:          string(item.ID),
			Name:        strings.TrimSpace(item.Name),
			Number:      item.Number,
			Position:    strings.TrimSpace(item.Position),
			IsAvailable: available,
		})
	}
	return out, nil
}

func parseMatch(raw []byte) (match.Match, error) {
	var envelope matchEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return match.Match{}, fmt.Errorf("decode match: %w", err)
	}
	if err := validate.Struct(envelope); err != nil {
		return match.Match{}, fmt.Errorf("match payload: %w", err)
	}

	item := envelope.Data
	out := match.Match{
		ID:         string(item.ID),
		HomeTeamID: string(item.HomeTeamID),
		AwayTeamID: string(item.AwayTeamID),
		Status:     match.NormalizeStatus(item.Status),
	}
	if kickoff := strings.TrimSpace(item.KickoffAt); kickoff != "" {
		parsed, err := time.Parse(time.RFC3339, kickoff)
		if err != nil {
			return match.Match{}, fmt.Errorf("match kickoffAt: %w", err)
		}
		parsed = parsed.UTC()
		out.KickoffAt = &parsed
	}
	if err := out.Validate(); err != nil {
		return match.Match{}, err
	}
	return out, nil
}

func parseSubmitResponse(raw []byte) (lineup.SubmitResult, error) {
	var decoded submitResponseDTO
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return lineup.SubmitResult{}, fmt.Errorf("decode submit response: %w", err)
	}
	if err := validate.Struct(decoded); err != nil {
		return lineup.SubmitResult{}, fmt.Errorf("submit response: %w", err)
	}
	return lineup.SubmitResult{
		Success: *decoded.Success,
		Message: strings.TrimSpace(decoded.Message),
	}, nil
}

func toSubmissionDTO(in lineup.Submission) submissionDTO {
	out := submissionDTO{
		MatchID:   in.MatchID,
		Formation: in.Formation,
		Players:   make([]submissionEntryDTO, 0, len(in.Players)),
	}
	for _, entry := range in.Players {
		out.Players = append(out.Players, submissionEntryDTO{
			PlayerID:  entry.PlayerID,
			Position:  entry.Position,
			Role:      string(entry.Role),
			IsCaptain: entry.IsCaptain,
		})
	}
	return out
}
