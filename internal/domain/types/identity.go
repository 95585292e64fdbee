package types

import "time"

// Identity is the authenticated Google user behind a session.
type Identity struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	SubjectID   string `json:"subject_id"`
}

// Token is the OAuth credential returned by the identity provider.
type Token struct {
	AccessToken string    `json:"-"`
	Expiry      time.Time `json:"expiry"`
}
