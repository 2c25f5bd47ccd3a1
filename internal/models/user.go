package models

type User struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Password            string `json:"password,omitempty"`
	Role                Role   `json:"role"`
	Section             string `json:"section,omitempty"`
	Department          string `json:"department,omitempty"`
	NotificationEnabled bool   `json:"notification_enabled"`
}

// Public returns a copy without the credential.
func (u *User) Public() *User {
	c := *u
	c.Password = ""
	return &c
}

func (u *User) Clone() *User {
	c := *u
	return &c
}

// Registration is the self-service sign-up payload.
type Registration struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	Section    string `json:"section,omitempty"`
	Department string `json:"department,omitempty"`
}

// UserUpdate carries profile changes. Nil fields are left unchanged.
type UserUpdate struct {
	ID                  int64   `json:"id"`
	Name                *string `json:"name,omitempty"`
	Role                *Role   `json:"role,omitempty"`
	Section             *string `json:"section,omitempty"`
	Department          *string `json:"department,omitempty"`
	Password            *string `json:"password,omitempty"`
	NotificationEnabled *bool   `json:"notification_enabled,omitempty"`
}
