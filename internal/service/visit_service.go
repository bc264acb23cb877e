package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nyumbani/visits-api/internal/domain"
	"github.com/nyumbani/visits-api/internal/metadata"
	"github.com/nyumbani/visits-api/internal/repo/postgres"
	"github.com/nyumbani/visits-api/pkg/events"
	"github.com/nyumbani/visits-api/pkg/logger"
)

// VisitService is the authorization-gated lifecycle over visit records.
type VisitService interface {
	// CreateSelfService creates a visit on behalf of a visitor. A nil visit
	// with a nil error means the store's access policy rejected an anonymous
	// write and the caller should proceed as if accepted.
	CreateSelfService(ctx context.Context, req *domain.SelfServiceVisitReq) (*domain.Visit, error)
	CreateOwnerEntry(ctx context.Context, ownerID string, req *domain.OwnerVisitReq) (*domain.Visit, error)
	Get(ctx context.Context, id, actorID string) (*domain.Visit, error)
	Transition(ctx context.Context, id string, target domain.VisitStatus, actorID string) (*domain.Visit, error)
	ListForOwner(ctx context.Context, ownerID string) ([]domain.Visit, error)
	ListForRequester(ctx context.Context, requesterID string) ([]domain.Visit, error)
	Delete(ctx context.Context, id, actorID string) error
}

type visitService struct {
	visits     postgres.VisitRepo
	properties postgres.PropertyRepo
	publisher  events.Publisher
}

func NewVisitService(visits postgres.VisitRepo, properties postgres.PropertyRepo, publisher events.Publisher) VisitService {
	return &visitService{
		visits:     visits,
		properties: properties,
		publisher:  publisher,
	}
}

func (s *visitService) CreateSelfService(ctx context.Context, req *domain.SelfServiceVisitReq) (*domain.Visit, error) {
	if err := validateSelfService(req); err != nil {
		return nil, err
	}

	// Owner is resolved from the property once, at creation time.
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("resolve property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("property %s: %w", req.PropertyID, domain.ErrNotFound)
	}

	draft := &domain.VisitDraft{
		PropertyID:    req.PropertyID,
		OwnerID:       property.OwnerID,
		RequesterID:   req.RequesterID,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		CheckOutDate:  req.CheckOutDate,
		Message:       req.Message,
		VisitorName:   req.VisitorName,
		VisitorEmail:  req.VisitorEmail,
	}

	visit, err := s.visits.Create(ctx, draft)
	if err != nil {
		// Anonymous writes the store's policy turns away become a quiet
		// acceptance: the visitor's flow is not blocked, and the condition
		// is recorded here. Everything else propagates.
		if errors.Is(err, domain.ErrPolicyBlocked) && req.RequesterID == nil {
			logger.WarnContext(ctx, "anonymous visit creation blocked by store policy",
				"property_id", req.PropertyID,
				"visitor_email", req.VisitorEmail,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("create visit: %w", err)
	}

	s.publishCreated(ctx, visit)
	return visit, nil
}

func (s *visitService) CreateOwnerEntry(ctx context.Context, ownerID string, req *domain.OwnerVisitReq) (*domain.Visit, error) {
	if req.ClientName == "" || req.ClientPhone == "" || req.ScheduledDate == "" || req.PropertyID == "" {
		return nil, fmt.Errorf("client name, client phone, date and property are required: %w", domain.ErrValidation)
	}
	if err := validateDate(req.ScheduledDate); err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("resolve property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("property %s: %w", req.PropertyID, domain.ErrNotFound)
	}
	if property.OwnerID != ownerID {
		return nil, fmt.Errorf("property belongs to another owner: %w", domain.ErrUnauthorized)
	}

	preamble := req.Notes
	if preamble == "" {
		preamble = "Manual visit scheduled by owner."
	}
	message := metadata.EncodeManualVisit(preamble, metadata.Client{
		Name:  req.ClientName,
		Phone: req.ClientPhone,
	})

	draft := &domain.VisitDraft{
		PropertyID:    req.PropertyID,
		OwnerID:       ownerID,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Message:       message,
	}

	visit, err := s.visits.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create owner visit: %w", err)
	}

	s.publishCreated(ctx, visit)
	return visit, nil
}

func (s *visitService) Get(ctx context.Context, id, actorID string) (*domain.Visit, error) {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visit: %w", err)
	}
	if visit == nil {
		return nil, fmt.Errorf("visit %s: %w", id, domain.ErrNotFound)
	}
	if !visit.AuthorizedActor(actorID) {
		return nil, domain.ErrUnauthorized
	}
	return visit, nil
}

func (s *visitService) Transition(ctx context.Context, id string, target domain.VisitStatus, actorID string) (*domain.Visit, error) {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visit: %w", err)
	}
	if visit == nil {
		return nil, fmt.Errorf("visit %s: %w", id, domain.ErrNotFound)
	}

	// Authorization is checked before the edge so an outsider learns nothing
	// about the record's current state.
	if !visit.AuthorizedActor(actorID) {
		return nil, domain.ErrUnauthorized
	}
	if !visit.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%s -> %s: %w", visit.Status, target, domain.ErrInvalidTransition)
	}

	updated, err := s.visits.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("visit %s: %w", id, domain.ErrNotFound)
	}

	if topic := events.TopicForStatus(string(target)); topic != "" {
		event := events.VisitStatusChangedEvent{
			VisitID:    updated.ID,
			PropertyID: updated.PropertyID,
			From:       string(visit.Status),
			To:         string(updated.Status),
			ChangedBy:  actorID,
			ChangedAt:  time.Now(),
		}
		if err := s.publisher.Publish(ctx, topic, event); err != nil {
			logger.ErrorContext(ctx, "failed to publish status change", "error", err, "visit_id", updated.ID, "topic", topic)
		}
	}

	return updated, nil
}

func (s *visitService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Visit, error) {
	visits, err := s.visits.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sortBySchedule(visits)
	return visits, nil
}

func (s *visitService) ListForRequester(ctx context.Context, requesterID string) ([]domain.Visit, error) {
	visits, err := s.visits.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	sortBySchedule(visits)
	return visits, nil
}

// sortBySchedule orders visits by scheduled date, then time, ascending. The
// ISO date and 24h time formats sort lexically. The repos order their queries
// the same way; the guarantee here does not depend on the backing store.
func sortBySchedule(vs []domain.Visit) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].ScheduledDate != vs[j].ScheduledDate {
			return vs[i].ScheduledDate < vs[j].ScheduledDate
		}
		return vs[i].ScheduledTime < vs[j].ScheduledTime
	})
}

func (s *visitService) Delete(ctx context.Context, id, actorID string) error {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get visit: %w", err)
	}
	if visit == nil {
		return fmt.Errorf("visit %s: %w", id, domain.ErrNotFound)
	}
	if !visit.AuthorizedActor(actorID) {
		return domain.ErrUnauthorized
	}

	deleted, err := s.visits.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	if !deleted {
		return fmt.Errorf("visit %s: %w", id, domain.ErrNotFound)
	}

	event := events.VisitDeletedEvent{
		VisitID:    visit.ID,
		PropertyID: visit.PropertyID,
		DeletedBy:  actorID,
		DeletedAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, events.VisitDeleted, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish visit deleted", "error", err, "visit_id", visit.ID)
	}

	return nil
}

func (s *visitService) publishCreated(ctx context.Context, visit *domain.Visit) {
	event := events.VisitCreatedEvent{
		VisitID:       visit.ID,
		PropertyID:    visit.PropertyID,
		OwnerID:       visit.OwnerID,
		RequesterID:   visit.RequesterID,
		VisitorEmail:  visit.VisitorEmail,
		ScheduledDate: visit.ScheduledDate,
		ScheduledTime: visit.ScheduledTime,
		ShortStay:     metadata.Decode(visit.Message).ShortStay.Detected,
		CreatedAt:     visit.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.VisitCreated, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish visit created", "error", err, "visit_id", visit.ID)
	}
}

func validateSelfService(req *domain.SelfServiceVisitReq) error {
	if req.PropertyID == "" || req.ScheduledDate == "" || req.ScheduledTime == "" {
		return fmt.Errorf("property, date and time are required: %w", domain.ErrValidation)
	}
	if err := validateDate(req.ScheduledDate); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", req.ScheduledTime); err != nil {
		return fmt.Errorf("scheduled_time must be HH:MM: %w", domain.ErrValidation)
	}
	// Non-owner parties identify themselves through an account or through
	// the visitor contact fields.
	if req.RequesterID == nil && (req.VisitorName == "" || req.VisitorEmail == "") {
		return fmt.Errorf("visitor name and email are required without an account: %w", domain.ErrValidation)
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("scheduled_date must be YYYY-MM-DD: %w", domain.ErrValidation)
	}
	return nil
}
