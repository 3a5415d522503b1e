package services

import "arthemis/internal/models"

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID   string
	Role models.Role
}

// ActorOf builds the actor for a loaded user.
func ActorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanMutate allows the owner of a resource or an admin.
func (a Actor) CanMutate(ownerID, action, resource string) error {
	if a.ID != "" && a.ID == ownerID {
		return nil
	}
	if a.IsAdmin() {
		return nil
	}
	return a.deny(action, resource)
}

// RequireOwner allows only the owner of a resource; admins get no override.
func (a Actor) RequireOwner(ownerID, action, resource string) error {
	if a.ID != "" && a.ID == ownerID {
		return nil
	}
	return a.deny(action, resource)
}

// RequireRole allows actors holding one of roles.
func (a Actor) RequireRole(action string, roles ...models.Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return newError(KindUnauthorized, "User %s is not authorized to %s", a.ID, action)
}

func (a Actor) deny(action, resource string) error {
	return newError(KindUnauthorized, "User %s is not authorized to %s this %s", a.ID, action, resource)
}
