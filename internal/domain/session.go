package domain

// Session is the identity of the currently active user. The zero value is
// an unauthenticated session.
type Session struct {
	User          *User
	Authenticated bool
}

// Persisted key names in the KeyValueStore.
const (
	KeySessionToken  = "session-token"
	KeySessionUser   = "session-user"
	KeyUserDirectory = "user-directory"
	KeyPosts         = "posts"
	KeyJobs          = "jobs"
	KeyMessages      = "messages"
	KeyNotifications = "notifications"
)
