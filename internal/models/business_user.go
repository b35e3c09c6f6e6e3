package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Business categories accepted at registration.
var ValidBusinessCategories = map[string]bool{
	"sports": true, "food": true, "fashion": true,
	"tech": true, "health": true, "other": true,
}

// Contact holds the reachable details of a business.
type Contact struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// SocialMedia holds the public social handles of a business.
type SocialMedia struct {
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
}

// BusinessUser is a registered business account. SuggestedInfluencers holds
// whatever the recommender returned verbatim until the first canonical read
// rewrites it.
type BusinessUser struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	BusinessName         string          `json:"businessName" db:"business_name"`
	Email                string          `json:"email" db:"email"`
	PasswordHash         string          `json:"-" db:"password_hash"` // Never serialize in JSON
	BusinessCategory     string          `json:"businessCategory" db:"business_category"`
	Description          string          `json:"description" db:"description"`
	Contact              Contact         `json:"contact"`
	Website              string          `json:"website" db:"website"`
	SocialMedia          SocialMedia     `json:"socialMedia"`
	SuggestedInfluencers json.RawMessage `json:"suggestedInfluencers,omitempty" db:"suggested_influencers"`
	CreatedAt            time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time       `json:"updatedAt" db:"updated_at"`
}
