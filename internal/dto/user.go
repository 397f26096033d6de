package dto

// ── user DTO ──

// UserListRequest admin user listing query.
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=admin moderator student"`
	IsActive *bool  `form:"is_active"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	Ordering string `form:"ordering"  binding:"omitempty,max=50"`
}

// UpdateProfileRequest self profile update. Role is not accepted here.
type UpdateProfileRequest struct {
	Email     *string `json:"email"      binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=150"`
	Address   *string `json:"address"    binding:"omitempty,max=255"`
	PhoneNo   *string `json:"phone_no"   binding:"omitempty,phone"`
}

// ChangeRoleRequest is accepted only to be refused.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SelfDeactivateRequest confirms self deactivation.
type SelfDeactivateRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminDeactivateRequest confirms deactivation of another account.
// Permanent deletes the user instead of flagging it inactive.
type AdminDeactivateRequest struct {
	Username  string `json:"username"  binding:"required"`
	Permanent bool   `json:"permanent"`
}
