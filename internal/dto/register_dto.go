package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateRegisterRequest struct {
	Name       string  `json:"name"        validate:"required,min=2,max=80"`
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
}

type RenameRegisterRequest struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegisterResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LocationID *string `json:"location_id"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
}

type RegisterListResponse struct {
	Data  []RegisterResponse `json:"data"`
	Total int64              `json:"total"`
}
