package constants

// Session and context keys
const (
	// ContextKeyUserID is the key under which the authenticated user ID is
	// stored in both the session and the gin context.
	ContextKeyUserID = "user_id"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "todo_session"
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxUserSearchResults caps collaborator search results.
const MaxUserSearchResults = 10
