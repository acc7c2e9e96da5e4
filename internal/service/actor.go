package service

import "github.com/cyber-Je-di/tuta-pamodzi/internal/models"

// Actor is the authenticated account performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// Is reports whether the actor holds the role.
func (a Actor) Is(role models.Role) bool {
	return a.ID != 0 && a.Role == role
}

func (a Actor) require(roles ...models.Role) error {
	for _, role := range roles {
		if a.Is(role) {
			return nil
		}
	}
	return ErrUnauthorized
}
