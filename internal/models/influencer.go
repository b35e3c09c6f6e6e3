package models

// Influencer is the canonical suggestion record. Every raw payload shape the
// recommender has been observed to return collapses into a list of these.
type Influencer struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Category   string `json:"category"`
	ProfileURL string `json:"profile_url"`
}

// BusinessProfile is the subset of a business account sent to the recommender
// when asking for suggestions.
type BusinessProfile struct {
	BusinessName     string      `json:"businessName"`
	Email            string      `json:"email"`
	BusinessCategory string      `json:"businessCategory"`
	Description      string      `json:"description"`
	Contact          Contact     `json:"contact"`
	Website          string      `json:"website"`
	SocialMedia      SocialMedia `json:"socialMedia"`
}

// Profile extracts the recommender-facing view of a business account.
func (u *BusinessUser) Profile() BusinessProfile {
	return BusinessProfile{
		BusinessName:     u.BusinessName,
		Email:            u.Email,
		BusinessCategory: u.BusinessCategory,
		Description:      u.Description,
		Contact:          u.Contact,
		Website:          u.Website,
		SocialMedia:      u.SocialMedia,
	}
}

// RankedInfluencer is a single row of the analytics dataset as served by the
// external analytics API.
type RankedInfluencer struct {
	Rank                int64   `json:"rank"`
	Name                string  `json:"name"`
	InstagramName       string  `json:"instagram_name"`
	Category            string  `json:"category"`
	Subscribers         float64 `json:"subscribers"`
	AuthenticEngagement float64 `json:"authentic_engagement"`
	EngagementAverage   float64 `json:"engagement_average"`
	Country             string  `json:"country"`
	InfluencerScore     float64 `json:"influencer_score"`
}
