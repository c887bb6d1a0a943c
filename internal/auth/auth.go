// Package auth is the mock identity of the app: a fixed current user and a
// small directory of other users. There is no login.
package auth

// User is a person who sends or receives signals.
type User struct {
	ID   string
	Name string
}

// DefaultUserID is the user the app runs as unless configured otherwise.
const DefaultUserID = "user-001"

var directory = map[string]User{
	"user-001": {ID: "user-001", Name: "Alex"},
	"user-002": {ID: "user-002", Name: "Sarah"},
	"user-003": {ID: "user-003", Name: "Mike"},
}

// Lookup returns the user with id.
func Lookup(id string) (User, bool) {
	u, ok := directory[id]
	return u, ok
}

// Name returns the display name for id, or id itself if unknown.
func Name(id string) string {
	if u, ok := directory[id]; ok {
		return u.Name
	}
	return id
}

// Current resolves the configured current user, falling back to the
// default user for unknown IDs.
func Current(id string) User {
	if u, ok := directory[id]; ok {
		return u
	}
	return directory[DefaultUserID]
}
