package user_dto

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries merge semantics: nil fields stay untouched.
// photo_url may be a data-URI, which is why it lives in the profile override
// rather than the size-capped user column.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=50"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty"`
}
