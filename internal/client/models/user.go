package models

// UserRecord mirrors an identity on the backend (POST /users).
type UserRecord struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	CreatedAt   string `json:"createdAt,omitempty"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

// UserPatch is a partial update for PUT /users/:email. Nil fields are left
// unchanged.
type UserPatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
	LastLoginAt *string `json:"lastLoginAt,omitempty"`
}
