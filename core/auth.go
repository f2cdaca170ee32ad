package core

// AuthContext identifies the principal a core operation runs for.
// It is resolved once at the API boundary and passed down explicitly.
type AuthContext struct {
	UserID   int
	Username string
	IsAdmin  bool
}

func (ac AuthContext) IsAuthenticated() bool {
	return ac.UserID > 0
}

// RequireUser returns ErrUnauthenticated unless ac carries a resolved user.
func (ac AuthContext) RequireUser() error {
	if !ac.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin returns ErrUnauthenticated or ErrPermissionDenied unless ac is an admin.
func (ac AuthContext) RequireAdmin() error {
	if err := ac.RequireUser(); err != nil {
		return err
	}
	if !ac.IsAdmin {
		return ErrPermissionDenied
	}
	return nil
}
