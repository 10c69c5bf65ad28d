package models

// User is the profile record kept per email address.
type User struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	CreatedAt   string `json:"createdAt,omitempty"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

// UserPatch is a partial update; nil fields are left alone.
type UserPatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
	LastLoginAt *string `json:"lastLoginAt,omitempty"`
}

// Apply returns u with the non-nil fields of p.
func (p UserPatch) Apply(u User) User {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	if p.LastLoginAt != nil {
		u.LastLoginAt = *p.LastLoginAt
	}
	return u
}

func (p UserPatch) Empty() bool {
	return p.DisplayName == nil && p.PhotoURL == nil && p.LastLoginAt == nil
}
