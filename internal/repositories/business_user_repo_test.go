package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/gavin100305/Auraflix-sub000/internal/models"
)

type BusinessUserRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    BusinessUserRepository
	userID  uuid.UUID
	context context.Context
}

func (suite *BusinessUserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewBusinessUserRepo(mock)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *BusinessUserRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestBusinessUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(BusinessUserRepoTestSuite))
}

func sampleBusinessUser(id uuid.UUID) *models.BusinessUser {
	return &models.BusinessUser{
		ID:               id,
		BusinessName:     "Glow Cosmetics",
		Email:            "hello@glow.example",
		PasswordHash:     "$2a$10$abcdefghijklmnopqrstuv",
		BusinessCategory: "fashion",
		Description:      "Organic skincare",
		Contact:          models.Contact{Phone: "555-0100", Address: "12 High St"},
		Website:          "https://glow.example",
		SocialMedia:      models.SocialMedia{Instagram: "@glow"},
	}
}

func (suite *BusinessUserRepoTestSuite) TestCreate_Success() {
	user := sampleBusinessUser(suite.userID)
	user.SuggestedInfluencers = json.RawMessage(`[]`)

	suite.mock.ExpectExec(`INSERT INTO business_users`).
		WithArgs(user.ID, user.BusinessName, user.Email, user.PasswordHash, user.BusinessCategory, user.Description,
			user.Contact.Phone, user.Contact.Address, user.Website,
			user.SocialMedia.Instagram, user.SocialMedia.Twitter, user.SocialMedia.LinkedIn,
			user.SuggestedInfluencers).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, user)
	assert.NoError(suite.T(), err)
}

func (suite *BusinessUserRepoTestSuite) TestCreate_DuplicateEmail() {
	user := sampleBusinessUser(suite.userID)

	suite.mock.ExpectExec(`INSERT INTO business_users`).
		WithArgs(user.ID, user.BusinessName, user.Email, user.PasswordHash, user.BusinessCategory, user.Description,
			user.Contact.Phone, user.Contact.Address, user.Website,
			user.SocialMedia.Instagram, user.SocialMedia.Twitter, user.SocialMedia.LinkedIn,
			user.SuggestedInfluencers).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "business_users_email_key"})

	err := suite.repo.Create(suite.context, user)
	assert.ErrorIs(suite.T(), err, ErrDuplicateEmail)
}

func (suite *BusinessUserRepoTestSuite) businessUserRows(user *models.BusinessUser) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "business_name", "email", "password_hash", "business_category", "description",
		"contact_phone", "contact_address", "website",
		"social_instagram", "social_twitter", "social_linkedin",
		"suggested_influencers", "created_at", "updated_at",
	}).AddRow(
		user.ID, user.BusinessName, user.Email, user.PasswordHash, user.BusinessCategory, user.Description,
		user.Contact.Phone, user.Contact.Address, user.Website,
		user.SocialMedia.Instagram, user.SocialMedia.Twitter, user.SocialMedia.LinkedIn,
		user.SuggestedInfluencers, time.Now(), time.Now(),
	)
}

func (suite *BusinessUserRepoTestSuite) TestGetByEmail_Success() {
	user := sampleBusinessUser(suite.userID)
	user.SuggestedInfluencers = json.RawMessage(`["alice\nbob"]`)

	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM business_users\s+WHERE email = \$1`).
		WithArgs(user.Email).
		WillReturnRows(suite.businessUserRows(user))

	got, err := suite.repo.GetByEmail(suite.context, user.Email)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, got.ID)
	assert.Equal(suite.T(), user.PasswordHash, got.PasswordHash)
	assert.Equal(suite.T(), user.SuggestedInfluencers, got.SuggestedInfluencers)
}

func (suite *BusinessUserRepoTestSuite) TestGetByEmail_NotFound() {
	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM business_users\s+WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetByEmail(suite.context, "nobody@example.com")
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *BusinessUserRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM business_users\s+WHERE id = \$1`).
		WithArgs(suite.userID).
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetByID(suite.context, suite.userID)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *BusinessUserRepoTestSuite) TestUpdateSuggestions_Success() {
	payload := json.RawMessage(`[{"name":"Alice","username":"Alice","category":"Social Media","profile_url":"https://www.instagram.com/Alice/"}]`)

	suite.mock.ExpectExec(`UPDATE business_users\s+SET suggested_influencers = \$1, updated_at = NOW\(\)\s+WHERE id = \$2`).
		WithArgs(payload, suite.userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateSuggestions(suite.context, suite.userID, payload)
	assert.NoError(suite.T(), err)
}

func (suite *BusinessUserRepoTestSuite) TestUpdateSuggestions_NotFound() {
	payload := json.RawMessage(`[]`)

	suite.mock.ExpectExec(`UPDATE business_users\s+SET suggested_influencers = \$1, updated_at = NOW\(\)\s+WHERE id = \$2`).
		WithArgs(payload, suite.userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateSuggestions(suite.context, suite.userID, payload)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *BusinessUserRepoTestSuite) TestCreate_WrapsUnexpectedErrors() {
	user := sampleBusinessUser(suite.userID)

	suite.mock.ExpectExec(`INSERT INTO business_users`).
		WithArgs(user.ID, user.BusinessName, user.Email, user.PasswordHash, user.BusinessCategory, user.Description,
			user.Contact.Phone, user.Contact.Address, user.Website,
			user.SocialMedia.Instagram, user.SocialMedia.Twitter, user.SocialMedia.LinkedIn,
			user.SuggestedInfluencers).
		WillReturnError(errors.New("connection reset"))

	err := suite.repo.Create(suite.context, user)
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrDuplicateEmail)
}
