package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gavin100305/Auraflix-sub000/internal/common"
	"github.com/gavin100305/Auraflix-sub000/internal/models"
	"github.com/gavin100305/Auraflix-sub000/internal/repositories"
	"github.com/gavin100305/Auraflix-sub000/internal/suggestions"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so that callers cannot enumerate registered accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers every token failure: missing, malformed,
	// expired, wrong key, or referencing a deleted account.
	ErrUnauthorized = errors.New("not authorized")

	// ErrValidation flags a missing or malformed profile field.
	ErrValidation = errors.New("validation failed")
)

// Token validity periods. Registration hands out a long-lived token so the
// onboarding flow is not interrupted; logins get the short one.
const (
	registerTokenTTL = 7 * 24 * time.Hour
	loginTokenTTL    = time.Hour

	passwordHashCost = 10
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	BusinessName     string             `json:"businessName"`
	Email            string             `json:"email"`
	Password         string             `json:"password"`
	BusinessCategory string             `json:"businessCategory"`
	Description      string             `json:"description"`
	Contact          models.Contact     `json:"contact"`
	Website          string             `json:"website"`
	SocialMedia      models.SocialMedia `json:"socialMedia"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the editable profile fields. Email and
// password are immutable here; credentials change through a separate flow.
type UpdateProfileRequest struct {
	BusinessName     string             `json:"businessName"`
	BusinessCategory string             `json:"businessCategory"`
	Description      string             `json:"description"`
	Contact          models.Contact     `json:"contact"`
	Website          string             `json:"website"`
	SocialMedia      models.SocialMedia `json:"socialMedia"`
}

// AuthResult bundles what both auth flows hand back to the transport layer.
type AuthResult struct {
	Token        *models.TokenResponse
	BusinessUser *models.BusinessUser
	Suggestions  []models.Influencer
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	BusinessID string `json:"business_id"`
	jwt.RegisteredClaims
}

// SuggestionRefresher re-fetches suggestions for a business after a
// successful login. Implemented by the suggestion service.
type SuggestionRefresher interface {
	Refresh(ctx context.Context, user *models.BusinessUser) error
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	Authenticate(ctx context.Context, tokenString string) (*models.BusinessUser, error)
	UpdateProfile(ctx context.Context, businessID uuid.UUID, req *UpdateProfileRequest) (*models.BusinessUser, error)
}

type authService struct {
	userRepo    repositories.BusinessUserRepository
	recommender RecommenderClient
	refresher   SuggestionRefresher
	jwtSecret   []byte

	fetchTimeout   time.Duration // bound on the registration-path fetch
	refreshTimeout time.Duration // bound on the async login-path refresh
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repositories.BusinessUserRepository, recommender RecommenderClient, refresher SuggestionRefresher, jwtSecret string, fetchTimeout, refreshTimeout time.Duration) AuthService {
	return &authService{
		userRepo:       userRepo,
		recommender:    recommender,
		refresher:      refresher,
		jwtSecret:      []byte(jwtSecret),
		fetchTimeout:   fetchTimeout,
		refreshTimeout: refreshTimeout,
	}
}

// Register creates a new business account. The recommender call is best
// effort: registration succeeds with an empty suggestion list when the
// upstream is down.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.BusinessUser{
		ID:               uuid.New(),
		BusinessName:     req.BusinessName,
		Email:            req.Email,
		PasswordHash:     string(hashedPassword),
		BusinessCategory: req.BusinessCategory,
		Description:      req.Description,
		Contact:          req.Contact,
		Website:          req.Website,
		SocialMedia:      req.SocialMedia,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	// Stored verbatim, whatever shape the upstream answered with. The first
	// canonical read rewrites it.
	user.SuggestedInfluencers = s.fetchRawSuggestions(ctx, user.Profile())

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create business user: %w", err)
	}

	token, err := s.generateToken(user.ID, registerTokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:        token,
		BusinessUser: user,
		Suggestions:  suggestions.Normalize(user.SuggestedInfluencers),
	}, nil
}

// Login verifies credentials and kicks off an asynchronous suggestion refresh
// that never blocks the response. The stored payload is only replaced when
// the upstream answers; a failed refresh keeps the last known good list.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown email and bad password must be indistinguishable.
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, loginTokenTTL)
	if err != nil {
		return nil, err
	}

	if s.refresher != nil {
		go s.refreshAfterLogin(user)
	}

	return &AuthResult{
		Token:        token,
		BusinessUser: user,
		Suggestions:  suggestions.Normalize(user.SuggestedInfluencers),
	}, nil
}

// Authenticate resolves a bearer token to its business account.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.BusinessUser, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	businessID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies the editable fields to the stored record. Empty
// fields in the request keep their current value.
func (s *authService) UpdateProfile(ctx context.Context, businessID uuid.UUID, req *UpdateProfileRequest) (*models.BusinessUser, error) {
	user, err := s.userRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != "" {
		user.BusinessName = req.BusinessName
	}
	if req.BusinessCategory != "" {
		if !models.ValidBusinessCategories[req.BusinessCategory] {
			return nil, fmt.Errorf("%w: business category must be one of: sports, food, fashion, tech, health, other", ErrValidation)
		}
		user.BusinessCategory = req.BusinessCategory
	}
	if req.Description != "" {
		user.Description = req.Description
	}
	if req.Contact.Phone != "" {
		user.Contact.Phone = req.Contact.Phone
	}
	if req.Contact.Address != "" {
		user.Contact.Address = req.Contact.Address
	}
	if req.Website != "" {
		user.Website = req.Website
	}
	if req.SocialMedia.Instagram != "" {
		user.SocialMedia.Instagram = req.SocialMedia.Instagram
	}
	if req.SocialMedia.Twitter != "" {
		user.SocialMedia.Twitter = req.SocialMedia.Twitter
	}
	if req.SocialMedia.LinkedIn != "" {
		user.SocialMedia.LinkedIn = req.SocialMedia.LinkedIn
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update business profile: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// fetchRawSuggestions asks the recommender for suggestions with a bounded
// timeout, degrading to an empty payload on any failure.
func (s *authService) fetchRawSuggestions(ctx context.Context, profile models.BusinessProfile) json.RawMessage {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	raw, err := s.recommender.FetchSuggestions(fetchCtx, profile)
	if err != nil {
		log.Printf("WARN: suggestion fetch failed for %s: %v", profile.Email, err)
		return json.RawMessage("[]")
	}
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return raw
}

// refreshAfterLogin runs detached from the request with its own deadline.
// Errors are logged, never surfaced.
func (s *authService) refreshAfterLogin(user *models.BusinessUser) {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx, user); err != nil {
		log.Printf("WARN: post-login suggestion refresh failed for %s: %v", user.ID, err)
	}
}

func (s *authService) generateToken(businessID uuid.UUID, ttl time.Duration) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		BusinessID: businessID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auraflix-auth",
			Subject:   businessID.String(),
			Audience:  jwt.ClaimStrings{"auraflix-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
		BusinessID:  businessID.String(),
		TokenID:     tokenID,
		IssuedAt:    now,
	}, nil
}

func validateRegistration(req *RegisterRequest) error {
	for _, field := range []struct {
		value, name string
	}{
		{req.BusinessName, "business name"},
		{req.Password, "password"},
		{req.Description, "description"},
	} {
		if err := common.ValidateRequiredString(field.value, field.name); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if !models.ValidBusinessCategories[req.BusinessCategory] {
		return fmt.Errorf("%w: business category must be one of: sports, food, fashion, tech, health, other", ErrValidation)
	}
	return nil
}
