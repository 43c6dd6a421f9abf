package models

// Participant sex codes.
const (
	SexMale   = "M"
	SexFemale = "F"
)

// Participant is a person attending events.
type Participant struct {
	Record
	LastName  string `gorm:"size:190;not null" json:"last_name"`
	FirstName string `gorm:"size:190;not null" json:"first_name"`
	MI        string `gorm:"column:mi;size:3;not null" json:"mi"`
	Sex       string `gorm:"size:1;not null" json:"sex"`
	Station   string `gorm:"size:255;default:''" json:"station"`
	Mobile    string `gorm:"size:190;not null" json:"mobile"`
	Email     string `gorm:"size:190;default:''" json:"email"`
}

func (Participant) TableName() string {
	return "participants"
}

func (Participant) EntityName() string {
	return "participant"
}

func (Participant) FillableFields() []string {
	return []string{"last_name", "first_name", "mi", "sex", "station", "mobile", "email"}
}
