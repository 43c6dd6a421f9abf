package dto

import "github.com/noah-isme/gema-events-api/internal/models"

// ParticipantCreateRequest is the payload for registering a participant.
type ParticipantCreateRequest struct {
	LastName  string `json:"last_name" validate:"required,max=190"`
	FirstName string `json:"first_name" validate:"required,max=190"`
	MI        string `json:"mi" validate:"max=3"`
	Sex       string `json:"sex" validate:"required,oneof=M F"`
	Station   string `json:"station" validate:"omitempty,max=255"`
	Mobile    string `json:"mobile" validate:"required,max=190"`
	Email     string `json:"email" validate:"omitempty,email,max=190"`
}

// ParticipantUpdateRequest carries a partial participant update.
type ParticipantUpdateRequest struct {
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=190"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=190"`
	MI        *string `json:"mi" validate:"omitempty,max=3"`
	Sex       *string `json:"sex" validate:"omitempty,oneof=M F"`
	Station   *string `json:"station" validate:"omitempty,max=255"`
	Mobile    *string `json:"mobile" validate:"omitempty,min=1,max=190"`
	Email     *string `json:"email" validate:"omitempty,email,max=190"`
}

// ParticipantResponse is the serialized participant.
type ParticipantResponse struct {
	RecordMeta
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	MI        string `json:"mi"`
	Sex       string `json:"sex"`
	Station   string `json:"station"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
}

// NewParticipantResponse converts a model into a DTO.
func NewParticipantResponse(participant models.Participant) ParticipantResponse {
	return ParticipantResponse{
		RecordMeta: newRecordMeta(participant.Record),
		LastName:   participant.LastName,
		FirstName:  participant.FirstName,
		MI:         participant.MI,
		Sex:        participant.Sex,
		Station:    participant.Station,
		Mobile:     participant.Mobile,
		Email:      participant.Email,
	}
}

// NewParticipantResponseSlice converts a slice of models into DTOs.
func NewParticipantResponseSlice(participants []models.Participant) []ParticipantResponse {
	responses := make([]ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		responses = append(responses, NewParticipantResponse(participant))
	}
	return responses
}
