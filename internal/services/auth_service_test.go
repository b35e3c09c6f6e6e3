package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/gavin100305/Auraflix-sub000/internal/models"
	"github.com/gavin100305/Auraflix-sub000/internal/repositories"
)

type MockBusinessUserRepository struct {
	mock.Mock
}

func (m *MockBusinessUserRepository) Create(ctx context.Context, user *models.BusinessUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockBusinessUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessUser), args.Error(1)
}

func (m *MockBusinessUserRepository) GetByEmail(ctx context.Context, email string) (*models.BusinessUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessUser), args.Error(1)
}

func (m *MockBusinessUserRepository) UpdateSuggestions(ctx context.Context, id uuid.UUID, payload json.RawMessage) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockBusinessUserRepository) UpdateProfile(ctx context.Context, user *models.BusinessUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockBusinessUserRepository) ListStaleSuggestions(ctx context.Context, olderThanHours int, limit int) ([]*models.BusinessUser, error) {
	args := m.Called(ctx, olderThanHours, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BusinessUser), args.Error(1)
}

type MockRecommenderClient struct {
	mock.Mock
}

func (m *MockRecommenderClient) FetchSuggestions(ctx context.Context, profile models.BusinessProfile) (json.RawMessage, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockRecommenderClient) FetchInfluencerByRank(ctx context.Context, rank int) (*models.RankedInfluencer, error) {
	args := m.Called(ctx, rank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RankedInfluencer), args.Error(1)
}

// channelRefresher records refresh calls without the timing hazards of a
// mock: the login-path refresh runs on its own goroutine.
type channelRefresher struct {
	called chan uuid.UUID
	err    error
}

func (r *channelRefresher) Refresh(ctx context.Context, user *models.BusinessUser) error {
	r.called <- user.ID
	return r.err
}

type AuthServiceTestSuite struct {
	suite.Suite
	mockRepo        *MockBusinessUserRepository
	mockRecommender *MockRecommenderClient
	service         AuthService
	ctx             context.Context
}

const testJWTSecret = "test-secret"

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockBusinessUserRepository{}
	suite.mockRecommender = &MockRecommenderClient{}
	suite.service = NewAuthService(suite.mockRepo, suite.mockRecommender, nil, testJWTSecret, time.Second, time.Second)
	suite.ctx = context.Background()

	suite.mockRepo.Test(suite.T())
	suite.mockRecommender.Test(suite.T())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRecommender.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		BusinessName:     "Glow Cosmetics",
		Email:            "hello@glow.example",
		Password:         "secret123",
		BusinessCategory: "fashion",
		Description:      "Organic skincare",
		Contact:          models.Contact{Phone: "555-0100"},
		Website:          "https://glow.example",
	}
}

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	raw := json.RawMessage(`["Alice\nBob"]`)
	suite.mockRecommender.On("FetchSuggestions", mock.Anything, mock.Anything).Return(raw, nil)
	suite.mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.BusinessUser")).Return(nil)

	result, err := suite.service.Register(suite.ctx, validRegisterRequest())

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.Token.AccessToken)
	assert.Equal(suite.T(), "Bearer", result.Token.TokenType)
	assert.Equal(suite.T(), int((7 * 24 * time.Hour).Seconds()), result.Token.ExpiresIn)

	// Raw payload stored verbatim, response already canonical.
	assert.Equal(suite.T(), raw, result.BusinessUser.SuggestedInfluencers)
	assert.Len(suite.T(), result.Suggestions, 2)
	assert.Equal(suite.T(), "Alice", result.Suggestions[0].Username)

	// The stored hash must verify the plaintext and never equal it.
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(result.BusinessUser.PasswordHash), []byte("secret123")))
}

func (suite *AuthServiceTestSuite) TestRegister_UpstreamDownStillSucceeds() {
	suite.mockRecommender.On("FetchSuggestions", mock.Anything, mock.Anything).Return(nil, ErrUpstreamUnavailable)
	suite.mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.BusinessUser) bool {
		return string(u.SuggestedInfluencers) == "[]"
	})).Return(nil)

	result, err := suite.service.Register(suite.ctx, validRegisterRequest())

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.Token.AccessToken)
	assert.Empty(suite.T(), result.Suggestions)
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	suite.mockRecommender.On("FetchSuggestions", mock.Anything, mock.Anything).Return(json.RawMessage(`[]`), nil)
	suite.mockRepo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicateEmail)

	result, err := suite.service.Register(suite.ctx, validRegisterRequest())

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, repositories.ErrDuplicateEmail)
}

func (suite *AuthServiceTestSuite) TestRegister_InvalidCategory() {
	req := validRegisterRequest()
	req.BusinessCategory = "crypto"

	result, err := suite.service.Register(suite.ctx, req)

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *AuthServiceTestSuite) storedUser(password string) *models.BusinessUser {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	return &models.BusinessUser{
		ID:                   uuid.New(),
		BusinessName:         "Glow Cosmetics",
		Email:                "hello@glow.example",
		PasswordHash:         string(hash),
		BusinessCategory:     "fashion",
		SuggestedInfluencers: json.RawMessage(`["Alice\nBob"]`),
	}
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	result, err := suite.service.Login(suite.ctx, &LoginRequest{Email: user.Email, Password: "secret123"})

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.Token.AccessToken)
	assert.Equal(suite.T(), int(time.Hour.Seconds()), result.Token.ExpiresIn)
	assert.Len(suite.T(), result.Suggestions, 2)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPasswordAndUnknownEmailIndistinguishable() {
	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	suite.mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repositories.ErrNotFound)

	_, wrongPassErr := suite.service.Login(suite.ctx, &LoginRequest{Email: user.Email, Password: "wrong"})
	_, unknownErr := suite.service.Login(suite.ctx, &LoginRequest{Email: "ghost@example.com", Password: "wrong"})

	assert.ErrorIs(suite.T(), wrongPassErr, ErrInvalidCredentials)
	assert.ErrorIs(suite.T(), unknownErr, ErrInvalidCredentials)
	assert.Equal(suite.T(), wrongPassErr, unknownErr)
}

func (suite *AuthServiceTestSuite) TestLogin_TriggersAsyncRefresh() {
	refresher := &channelRefresher{called: make(chan uuid.UUID, 1)}
	service := NewAuthService(suite.mockRepo, suite.mockRecommender, refresher, testJWTSecret, time.Second, time.Second)

	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := service.Login(suite.ctx, &LoginRequest{Email: user.Email, Password: "secret123"})
	assert.NoError(suite.T(), err)

	select {
	case id := <-refresher.called:
		assert.Equal(suite.T(), user.ID, id)
	case <-time.After(2 * time.Second):
		suite.T().Fatal("refresh was never triggered")
	}
}

func (suite *AuthServiceTestSuite) TestLogin_RefreshFailureDoesNotAffectResponse() {
	refresher := &channelRefresher{called: make(chan uuid.UUID, 1), err: ErrUpstreamUnavailable}
	service := NewAuthService(suite.mockRepo, suite.mockRecommender, refresher, testJWTSecret, time.Second, time.Second)

	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	result, err := service.Login(suite.ctx, &LoginRequest{Email: user.Email, Password: "secret123"})

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.Token.AccessToken)
	<-refresher.called
}

func (suite *AuthServiceTestSuite) TestAuthenticate_Success() {
	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	suite.mockRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	login, err := suite.service.Login(suite.ctx, &LoginRequest{Email: user.Email, Password: "secret123"})
	assert.NoError(suite.T(), err)

	got, err := suite.service.Authenticate(suite.ctx, login.Token.AccessToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, got.ID)
	assert.Empty(suite.T(), got.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_ExpiredToken() {
	user := suite.storedUser("secret123")
	expired := suite.signToken(user.ID, testJWTSecret, -time.Minute)

	got, err := suite.service.Authenticate(suite.ctx, expired)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_WrongKey() {
	user := suite.storedUser("secret123")
	forged := suite.signToken(user.ID, "other-secret", time.Hour)

	got, err := suite.service.Authenticate(suite.ctx, forged)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_DeletedRecord() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

	token := suite.signToken(id, testJWTSecret, time.Hour)

	got, err := suite.service.Authenticate(suite.ctx, token)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_MalformedToken() {
	for _, token := range []string{"", "garbage", "a.b.c"} {
		got, err := suite.service.Authenticate(suite.ctx, token)
		assert.Nil(suite.T(), got)
		assert.ErrorIs(suite.T(), err, ErrUnauthorized)
	}
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_PartialUpdate() {
	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	suite.mockRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *models.BusinessUser) bool {
		return u.BusinessName == "Glow Skincare" && u.BusinessCategory == "fashion"
	})).Return(nil)

	got, err := suite.service.UpdateProfile(suite.ctx, user.ID, &UpdateProfileRequest{
		BusinessName: "Glow Skincare",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Glow Skincare", got.BusinessName)
	assert.Empty(suite.T(), got.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_RejectsUnknownCategory() {
	user := suite.storedUser("secret123")
	suite.mockRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	got, err := suite.service.UpdateProfile(suite.ctx, user.ID, &UpdateProfileRequest{
		BusinessCategory: "crypto",
	})

	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *AuthServiceTestSuite) signToken(businessID uuid.UUID, secret string, ttl time.Duration) string {
	claims := TokenClaims{
		BusinessID: businessID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   businessID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(suite.T(), err)
	return signed
}

func TestLoginErrorsDoNotLeakDetail(t *testing.T) {
	repo := &MockBusinessUserRepository{}
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	service := NewAuthService(repo, &MockRecommenderClient{}, nil, testJWTSecret, time.Second, time.Second)
	_, err := service.Login(context.Background(), &LoginRequest{Email: "a@b.co", Password: "pw"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotContains(t, err.Error(), "dial tcp")
}
