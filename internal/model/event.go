package model

import "time"

type EventType string

const (
	EventTypeWork    EventType = "WORK"
	EventTypeMedical EventType = "MEDICAL"
	EventTypeSocial  EventType = "SOCIAL"
	EventTypeOther   EventType = "OTHER"
)

// ReferenceDate is the day on which time-of-day values are stored.
var ReferenceDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

type MedicalEvent struct {
	Reason     string `json:"reason"`
	Doctor     string `json:"doctor"`
	DoctorType string `json:"doctorType"`
}

// Event is a scheduled client activity. BeginDate and EndDate are calendar
// days at UTC midnight; BeginTime and EndTime are times of day on
// ReferenceDate.
type Event struct {
	ID                  string        `json:"id"`
	ClientID            string        `json:"clientId"`
	Type                EventType     `json:"type"`
	Description         string        `json:"description"`
	BeginDate           time.Time     `json:"beginDate"`
	EndDate             time.Time     `json:"endDate"`
	BeginTime           time.Time     `json:"beginTime"`
	EndTime             time.Time     `json:"endTime"`
	NumberStaffRequired int           `json:"numberStaffRequired"`
	Medical             *MedicalEvent `json:"medical,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
}

type CreateEventRequest struct {
	Type                string               `json:"type" binding:"required,oneof=WORK MEDICAL SOCIAL OTHER"`
	Description         string               `json:"description" binding:"max=1024"`
	BeginDate           string               `json:"beginDate" binding:"required,datetime=2006-01-02"`
	EndDate             string               `json:"endDate" binding:"required,datetime=2006-01-02"`
	BeginTime           string               `json:"beginTime" binding:"required,datetime=15:04"`
	EndTime             string               `json:"endTime" binding:"required,datetime=15:04"`
	NumberStaffRequired int                  `json:"numberStaffRequired" binding:"gte=0"`
	Medical             *MedicalEventRequest `json:"medical"`
}

type MedicalEventRequest struct {
	Reason     string `json:"reason" binding:"required,max=512"`
	Doctor     string `json:"doctor" binding:"required,max=128"`
	DoctorType string `json:"doctorType" binding:"max=128"`
}

// EventWindow bounds an event query by begin date. A nil End is open-ended.
type EventWindow struct {
	Begin time.Time
	End   *time.Time
}

// EventConflicts pairs an event with every later event it overlaps.
type EventConflicts struct {
	Event     Event   `json:"event"`
	Conflicts []Event `json:"conflicts"`
}

type ConflictSummary struct {
	HasConflicts bool `json:"hasConflicts"`
	NumConflicts int  `json:"numConflicts"`
}

type ConflictSummaryResponse struct {
	Conflicts ConflictSummary `json:"conflicts"`
}

type ConflictListResponse struct {
	Conflicts []EventConflicts `json:"conflicts"`
}
