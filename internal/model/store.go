package model

type Store struct {
	BaseModel
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"` // Nullable
	City        *string `db:"city" json:"city"`                // Nullable
	LogoURL     *string `db:"logo_url" json:"logo_url"`        // Nullable
	IsActive    bool    `db:"is_active" json:"is_active"`
}
