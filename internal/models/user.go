package models

// User is read-only from this application's perspective; the full list is
// fetched wholesale to populate the owner selector.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// FindUser resolves an id against a fetched user list. Returns nil when the
// id is absent, e.g. a stale list.
func FindUser(users []User, id string) *User {
	if id == "" {
		return nil
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
