package model

import (
	"time"

	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
)

// Listing is a catalog item: a rental property or a roommate profile.
// Contact fields are private until the viewer unlocks the listing.
type Listing struct {
	ID          string                 `json:"id"`
	OwnerUserID int64                  `json:"owner_user_id"`
	Kind        enums.ListingKind      `json:"kind"`
	Title       string                 `json:"title"`
	City        string                 `json:"city"`
	Rent        int                    `json:"rent"`
	Description string                 `json:"description"`
	Status      enums.ModerationStatus `json:"status"`
	Contact     Contact                `json:"-"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
