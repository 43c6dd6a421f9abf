// Package policy decides which roles may perform which record abilities.
package policy

import (
	"strings"

	"github.com/noah-isme/gema-events-api/internal/audit"
)

// Ability names an action on a record type.
type Ability string

const (
	ViewAny     Ability = "viewAny"
	View        Ability = "view"
	Create      Ability = "create"
	Update      Ability = "update"
	Delete      Ability = "delete"
	Restore     Ability = "restore"
	ForceDelete Ability = "forceDelete"
)

// Roles known to the API.
const (
	RoleAdmin   = "admin"
	RoleEncoder = "encoder"
	RoleUser    = "user"
)

var encoderAbilities = map[Ability]bool{
	ViewAny: true,
	View:    true,
	Create:  true,
	Update:  true,
}

// ownerAbilities are granted to encoders only on records they created.
var ownerAbilities = map[Ability]bool{
	Delete:  true,
	Restore: true,
}

// Allows reports whether actor may perform ability. createdBy is the record
// owner and may be nil for abilities that do not target a record.
func Allows(actor audit.Actor, ability Ability, createdBy *uint) bool {
	switch strings.ToLower(strings.TrimSpace(actor.Role)) {
	case RoleAdmin:
		return true
	case RoleEncoder:
		if encoderAbilities[ability] {
			return true
		}
		if ownerAbilities[ability] {
			return createdBy != nil && actor.ID != 0 && *createdBy == actor.ID
		}
		return false
	case RoleUser:
		return ability == ViewAny || ability == View
	default:
		return false
	}
}
