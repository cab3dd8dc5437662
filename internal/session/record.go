package session

// DefaultRole is assumed whenever the stored role is missing.
const DefaultRole = "user"

// AdminRole marks records that may see the admin console.
const AdminRole = "admin"

// Storage keys of the unified scheme.
const (
	KeyToken    = "token"
	KeyEmail    = "email"
	KeyRole     = "role"
	KeyUserID   = "userId"
	KeyFullName = "fullName"
)

// Storage keys written by the retired auth_* scheme. They are only read
// to migrate old sessions and deleted on Clear.
const (
	legacyKeyToken = "auth_token"
	legacyKeyEmail = "auth_email"
	legacyKeyRole  = "auth_role"
)

var recordKeys = []string{KeyToken, KeyEmail, KeyRole, KeyUserID, KeyFullName}

var legacyKeys = []string{legacyKeyToken, legacyKeyEmail, legacyKeyRole}

// Record is the client-believed authentication state.
type Record struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserID   string `json:"userId,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// IsAdmin reports whether the stored role is admin.
//
// The role is unverified client state. Use it to decide what to show,
// never what to allow: the backend rejects admin calls from non-admins.
func (record *Record) IsAdmin() bool {
	return record != nil && record.Role == AdminRole
}

func (record Record) values() []string {
	return []string{record.Token, record.Email, record.Role, record.UserID, record.FullName}
}
