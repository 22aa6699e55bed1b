package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
	"github.com/mercatura/catalog-backend/pkg/pagination"
)

// Service defines notification operations: recording engine side effects
// and the list/read surface operators consume them through.
type Service interface {
	RecordDefaultCleared(ctx context.Context, cleared []defaults.Cleared)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, tenantID *uuid.UUID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, tenantID *uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

// ListParams configures pagination for notifications.
type ListParams struct {
	TenantID   *uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, log: log}, nil
}

// RecordDefaultCleared writes one notification per demoted record so tenant
// operators learn their previous default was switched off. Failures are
// logged, not propagated: the catalogue write already committed and must
// not be reported as failed because of a notification hiccup.
func (s *service) RecordDefaultCleared(ctx context.Context, cleared []defaults.Cleared) {
	if len(cleared) == 0 {
		return
	}
	rows := make([]models.Notification, 0, len(cleared))
	for _, c := range cleared {
		rows = append(rows, models.Notification{
			TenantID:    c.TenantID,
			Kind:        enums.NotificationKindDefaultCleared,
			EntityTable: c.Table,
			EntityID:    c.RecordID,
			Message:     fmt.Sprintf("the %s flag on this %s record was switched off because another record became the default", c.Flag, c.Table),
		})
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil && s.log != nil {
		s.log.Error(ctx, "recording default-cleared notifications failed", err)
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{
		TenantID:   params.TenantID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, tenantID *uuid.UUID, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, tenantID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, tenantID *uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, tenantID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
