package services

import (
	"github.com/portuna85/kraft/internal/models"
)

// Principal is the authenticated identity for one inbound operation. The
// service layer never reads ambient session state; callers pass the
// principal explicitly.
type Principal struct {
	ID   uint
	Name string
	Role string
}

func PrincipalFrom(u *models.User) Principal {
	return Principal{ID: u.ID, Name: u.Name, Role: u.Role}
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}
