package models

// Session is the acting identity of a request, resolved once from the access token.
type Session struct {
	UserID    string
	ProfileID string
	Role      UserRole
	Email     string
	FullName  string
}

// SessionFromClaims builds a session from validated token claims.
func SessionFromClaims(claims *JWTClaims) *Session {
	if claims == nil {
		return nil
	}
	return &Session{
		UserID:    claims.UserID,
		ProfileID: claims.ProfileID,
		Role:      claims.Role,
		Email:     claims.Email,
		FullName:  claims.FullName,
	}
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Authenticated reports whether the session identifies a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
