package dto

// ── auth DTO ──

// LoginRequest credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the
// access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest creates an account. Students register themselves;
// moderators are registered by an admin.
type RegisterRequest struct {
	Username        string `json:"username"         binding:"required,max=150,username"`
	Email           string `json:"email"            binding:"required,email,max=254"`
	Password        string `json:"password"         binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	FirstName       string `json:"first_name"       binding:"omitempty,max=150"`
	LastName        string `json:"last_name"        binding:"omitempty,max=150"`
	Address         string `json:"address"          binding:"omitempty,max=255"`
	PhoneNo         string `json:"phone_no"         binding:"omitempty,phone"`
}
