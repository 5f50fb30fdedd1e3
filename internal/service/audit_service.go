package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"obrafin/internal/repository"
	"obrafin/pkg/pagination"
)

type AuditLogResponse struct {
	ID        string          `json:"_id"`
	UserID    string          `json:"userId"`
	Nome      string          `json:"nome"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, q repository.Query) (pagination.Page[AuditLogResponse], error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs returns a page of entries, newest first, with the acting user's name
func (s *auditService) GetAuditLogs(ctx context.Context, q repository.Query) (pagination.Page[AuditLogResponse], error) {
	logs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return pagination.Page[AuditLogResponse]{}, fmt.Errorf("list audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		nome := "Sistema"
		userID := ""
		if l.User != nil {
			nome = l.User.Nome
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		details := json.RawMessage(l.Details)
		if len(details) == 0 {
			details = json.RawMessage("null")
		}

		res = append(res, AuditLogResponse{
			ID:        l.ID.String(),
			UserID:    userID,
			Nome:      nome,
			Action:    l.Action,
			Entity:    l.Entity,
			EntityID:  l.EntityID,
			Details:   details,
			CreatedAt: l.CreatedAt,
		})
	}

	return pagination.NewPage(res, q.Page, total), nil
}
