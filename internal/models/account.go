package models

// Credentials are submitted to log in
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is submitted to create an account. ConfirmPassword never leaves the client.
type Registration struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}
