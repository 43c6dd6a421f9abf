package dto

import (
	"time"

	"github.com/noah-isme/gema-events-api/internal/models"
)

// EventCreateRequest is the payload for creating an event.
type EventCreateRequest struct {
	Title     string `json:"title" validate:"required,min=2,max=255"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Type      string `json:"type" validate:"required,oneof=W T C"`
	Grouping  string `json:"grouping" validate:"required,oneof=R L M N"`
	IsActive  *bool  `json:"is_active"`
}

// EventUpdateRequest carries a partial event update.
type EventUpdateRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=2,max=255"`
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Type      *string `json:"type" validate:"omitempty,oneof=W T C"`
	Grouping  *string `json:"grouping" validate:"omitempty,oneof=R L M N"`
	IsActive  *bool   `json:"is_active"`
}

// EventResponse is the serialized event, including the derived labels.
type EventResponse struct {
	RecordMeta
	Title         string   `json:"title"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Type          string   `json:"type"`
	Grouping      string   `json:"grouping"`
	IsActive      bool     `json:"is_active"`
	TypeName      string   `json:"type_name"`
	GroupingName  string   `json:"grouping_name"`
	TypeKeys      []string `json:"type_keys"`
	TypeNames     []string `json:"type_names"`
	GroupingKeys  []string `json:"grouping_keys"`
	GroupingNames []string `json:"grouping_names"`
}

// NewEventResponse converts a model into a DTO.
func NewEventResponse(event models.Event) EventResponse {
	typeKeys, typeNames := splitOptions(models.EventTypes())
	groupingKeys, groupingNames := splitOptions(models.EventGroupings())

	return EventResponse{
		RecordMeta:    newRecordMeta(event.Record),
		Title:         event.Title,
		StartDate:     time.Time(event.StartDate).Format(dateLayout),
		EndDate:       time.Time(event.EndDate).Format(dateLayout),
		Type:          event.Type,
		Grouping:      event.Grouping,
		IsActive:      event.IsActive,
		TypeName:      event.TypeName(),
		GroupingName:  event.GroupingName(),
		TypeKeys:      typeKeys,
		TypeNames:     typeNames,
		GroupingKeys:  groupingKeys,
		GroupingNames: groupingNames,
	}
}

// NewEventResponseSlice converts a slice of models into DTOs.
func NewEventResponseSlice(events []models.Event) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, NewEventResponse(event))
	}
	return responses
}

func splitOptions(options []models.Option) ([]string, []string) {
	keys := make([]string, 0, len(options))
	labels := make([]string, 0, len(options))
	for _, option := range options {
		keys = append(keys, option.Code)
		labels = append(labels, option.Label)
	}
	return keys, labels
}
