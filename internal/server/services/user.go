// Package services contains server-side business logic. This file implements
// UserService, which exchanges federated identity tokens for sessions and
// issues/refreshes JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/dbx"
	"github.com/dmitrijs2005/moodnotes/internal/server/auth"
	"github.com/dmitrijs2005/moodnotes/internal/server/config"
	"github.com/dmitrijs2005/moodnotes/internal/server/models"
	"github.com/dmitrijs2005/moodnotes/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	identitySecret               []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		identitySecret:               []byte(cfg.IdentitySecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// SignIn exchanges an externally obtained identity token for a session.
// The account is created on first sign-in (keyed by the provider subject).
func (s *UserService) SignIn(ctx context.Context, identityToken string) (*TokenPair, string, error) {

	subject, email, err := auth.ParseIdentityToken(identityToken, s.identitySecret)
	if err != nil {
		return nil, "", common.ErrorUnauthenticated
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetBySubject(ctx, subject)
	if errors.Is(err, common.ErrorNotFound) {
		user, err = repo.Create(ctx, &models.User{Subject: subject, Email: email})
	}
	if err != nil {
		return nil, "", fmt.Errorf("error resolving user: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return pair, user.ID, nil
}

// RefreshToken rotates a refresh token: the presented token is deleted and a
// fresh pair is issued inside one transaction.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var tokenPair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.RefreshTokens(tx)

		if err := txRepo.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		tokenPair, err = s.generateTokenPairTx(ctx, tx, token.UserID)
		if err != nil {
			return fmt.Errorf("error generating token pair: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string) (*TokenPair, error) {
	return s.generateTokenPairTx(ctx, s.db, userID)
}

func (s *UserService) generateTokenPairTx(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshTokenRepo := s.repomanager.RefreshTokens(db)
	err = refreshTokenRepo.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
