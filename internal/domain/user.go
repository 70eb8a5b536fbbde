package domain

// UserModel authenticated learner, resolved from the session token
type UserModel struct {
	ID       string
	Username string
	Email    string
}
