package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/schedule"
)

type EventStore interface {
	CreateEvent(ctx context.Context, e model.Event) (*model.Event, error)
	ListEvents(ctx context.Context, clientID string, window model.EventWindow) ([]model.Event, error)
}

type EventService struct {
	clients *ClientService
	events  EventStore
	now     func() time.Time
}

func NewEventService(clients *ClientService, events EventStore) *EventService {
	return &EventService{clients: clients, events: events, now: time.Now}
}

// ParseWindow validates the optional beginDate/endDate query pair. With
// neither present the window starts today and is open-ended; supplying only
// one end is rejected.
func ParseWindow(beginDate, endDate string, now time.Time) (model.EventWindow, error) {
	beginDate = strings.TrimSpace(beginDate)
	endDate = strings.TrimSpace(endDate)

	if beginDate == "" && endDate == "" {
		now = now.UTC()
		return model.EventWindow{Begin: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}, nil
	}

	fields := map[string]string{}
	if beginDate == "" {
		fields["beginDate"] = "beginDate is required when endDate is set"
	}
	if endDate == "" {
		fields["endDate"] = "endDate is required when beginDate is set"
	}
	begin, err := time.Parse(dateLayout, beginDate)
	if beginDate != "" && err != nil {
		fields["beginDate"] = "beginDate must be a YYYY-MM-DD date"
	}
	end, err := time.Parse(dateLayout, endDate)
	if endDate != "" && err != nil {
		fields["endDate"] = "endDate must be a YYYY-MM-DD date"
	}
	if len(fields) > 0 {
		return model.EventWindow{}, ValidationError("invalid date window", fields)
	}
	if end.Before(begin) {
		return model.EventWindow{}, FieldError("endDate", "endDate must not be before beginDate")
	}
	return model.EventWindow{Begin: begin, End: &end}, nil
}

func (s *EventService) Create(ctx context.Context, clientID string, req model.CreateEventRequest) (*model.Event, error) {
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return nil, err
	}

	event, verr := buildEvent(clientID, req)
	if verr != nil {
		return nil, verr
	}
	event.ID = uuid.NewString()

	created, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		return nil, InternalError(err)
	}
	return created, nil
}

func (s *EventService) List(ctx context.Context, clientID, beginDate, endDate string) ([]model.Event, error) {
	window, err := ParseWindow(beginDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return nil, err
	}

	events, err := s.events.ListEvents(ctx, clientID, window)
	if err != nil {
		return nil, InternalError(err)
	}
	return events, nil
}

func (s *EventService) Conflicts(ctx context.Context, clientID, beginDate, endDate string) ([]model.EventConflicts, error) {
	events, err := s.List(ctx, clientID, beginDate, endDate)
	if err != nil {
		return nil, err
	}
	return schedule.DetectConflicts(events), nil
}

func (s *EventService) ConflictSummary(ctx context.Context, clientID, beginDate, endDate string) (model.ConflictSummary, error) {
	conflicts, err := s.Conflicts(ctx, clientID, beginDate, endDate)
	if err != nil {
		return model.ConflictSummary{}, err
	}
	return schedule.Summarize(conflicts), nil
}

func buildEvent(clientID string, req model.CreateEventRequest) (model.Event, *Error) {
	fields := map[string]string{}

	eventType := model.EventType(req.Type)
	switch eventType {
	case model.EventTypeWork, model.EventTypeMedical, model.EventTypeSocial, model.EventTypeOther:
	default:
		fields["type"] = "type must be one of WORK, MEDICAL, SOCIAL, OTHER"
	}

	beginDate, err := time.Parse(dateLayout, req.BeginDate)
	if err != nil {
		fields["beginDate"] = "beginDate must be a YYYY-MM-DD date"
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		fields["endDate"] = "endDate must be a YYYY-MM-DD date"
	}
	beginTime, err := parseTimeOfDay(req.BeginTime)
	if err != nil {
		fields["beginTime"] = "beginTime must be an HH:MM time"
	}
	endTime, err := parseTimeOfDay(req.EndTime)
	if err != nil {
		fields["endTime"] = "endTime must be an HH:MM time"
	}
	if req.NumberStaffRequired < 0 {
		fields["numberStaffRequired"] = "numberStaffRequired must not be negative"
	}

	if _, bad := fields["beginDate"]; !bad {
		if _, bad := fields["endDate"]; !bad && endDate.Before(beginDate) {
			fields["endDate"] = "endDate must not be before beginDate"
		}
	}
	if _, bad := fields["beginTime"]; !bad {
		if _, bad := fields["endTime"]; !bad && beginDate.Equal(endDate) && !beginTime.Before(endTime) {
			fields["endTime"] = "endTime must be after beginTime"
		}
	}

	var medical *model.MedicalEvent
	switch {
	case eventType == model.EventTypeMedical && req.Medical == nil:
		fields["medical"] = "medical details are required for MEDICAL events"
	case eventType != model.EventTypeMedical && req.Medical != nil:
		fields["medical"] = "medical details are only allowed for MEDICAL events"
	case req.Medical != nil:
		if strings.TrimSpace(req.Medical.Reason) == "" {
			fields["medical.reason"] = "reason is required"
		}
		if strings.TrimSpace(req.Medical.Doctor) == "" {
			fields["medical.doctor"] = "doctor is required"
		}
		medical = &model.MedicalEvent{
			Reason:     req.Medical.Reason,
			Doctor:     req.Medical.Doctor,
			DoctorType: req.Medical.DoctorType,
		}
	}

	if len(fields) > 0 {
		return model.Event{}, ValidationError("validation failed", fields)
	}

	return model.Event{
		ClientID:            clientID,
		Type:                eventType,
		Description:         req.Description,
		BeginDate:           beginDate,
		EndDate:             endDate,
		BeginTime:           beginTime,
		EndTime:             endTime,
		NumberStaffRequired: req.NumberStaffRequired,
		Medical:             medical,
	}, nil
}

// parseTimeOfDay places an HH:MM value on model.ReferenceDate.
func parseTimeOfDay(value string) (time.Time, error) {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return model.ReferenceDate.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute), nil
}
