package models

import "gorm.io/datatypes"

// Event type codes.
const (
	EventTypeWorkshop   = "W"
	EventTypeTraining   = "T"
	EventTypeConference = "C"
)

// Event grouping codes.
const (
	GroupingByRegion       = "R"
	GroupingByLearningArea = "L"
	GroupingByLanguage     = "M"
	GroupingNone           = "N"
)

// Option pairs a stored code with its display label.
type Option struct {
	Code  string
	Label string
}

var eventTypes = []Option{
	{Code: EventTypeWorkshop, Label: "Workshop/Writeshop"},
	{Code: EventTypeTraining, Label: "Training/Orientation"},
	{Code: EventTypeConference, Label: "Conference/Summit"},
}

var eventGroupings = []Option{
	{Code: GroupingByRegion, Label: "By Region"},
	{Code: GroupingByLearningArea, Label: "By Learning Area"},
	{Code: GroupingByLanguage, Label: "By Language"},
	{Code: GroupingNone, Label: "No Grouping"},
}

// Event is a scheduled activity owned by the user that created it.
type Event struct {
	Record
	Title     string         `gorm:"size:255;not null" json:"title"`
	StartDate datatypes.Date `gorm:"not null" json:"start_date"`
	EndDate   datatypes.Date `gorm:"not null" json:"end_date"`
	Type      string         `gorm:"size:1;not null" json:"type"`
	Grouping  string         `gorm:"size:1;not null" json:"grouping"`
	IsActive  bool           `gorm:"not null;default:false;index" json:"is_active"`
}

// TableName pins the table name used by queries, cache keys and indexes.
func (Event) TableName() string {
	return "events"
}

// EntityName is the singular name used in audit actions and metrics.
func (Event) EntityName() string {
	return "event"
}

// FillableFields lists the attributes callers may assign.
func (Event) FillableFields() []string {
	return []string{"title", "start_date", "end_date", "type", "grouping", "is_active"}
}

// TypeName resolves the type code to its label.
func (e Event) TypeName() string {
	return labelFor(eventTypes, e.Type)
}

// GroupingName resolves the grouping code to its label.
func (e Event) GroupingName() string {
	return labelFor(eventGroupings, e.Grouping)
}

// EventTypes returns the known type options in display order.
func EventTypes() []Option {
	return append([]Option(nil), eventTypes...)
}

// EventGroupings returns the known grouping options in display order.
func EventGroupings() []Option {
	return append([]Option(nil), eventGroupings...)
}

func labelFor(options []Option, code string) string {
	for _, option := range options {
		if option.Code == code {
			return option.Label
		}
	}
	return ""
}
