package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cashdash/internal/aggregator"
	apperrors "cashdash/internal/errors"
	"cashdash/internal/logger"
	"cashdash/internal/models"
	"cashdash/internal/secret"
)

// linkService connects bank accounts through the aggregation provider and
// keeps the linked-account registry.
type linkService struct {
	db           *gorm.DB
	provider     aggregator.Provider
	sealer       *secret.Sealer
	clientUserID string
	log          *zap.SugaredLogger
}

// NewLinkService creates a new LinkServicer.
func NewLinkService(db *gorm.DB, provider aggregator.Provider, sealer *secret.Sealer, clientUserID string) LinkServicer {
	return &linkService{
		db:           db,
		provider:     provider,
		sealer:       sealer,
		clientUserID: clientUserID,
		log:          logger.Named("link"),
	}
}

// CreateLinkToken opens a short-lived link session scoped to transactions.
func (s *linkService) CreateLinkToken(ctx context.Context) (string, error) {
	token, err := s.provider.CreateLinkToken(ctx, s.clientUserID)
	if err != nil {
		s.log.Errorw("Link token creation failed", "error", err)
		return "", apperrors.Wrap(apperrors.ErrLinkTokenFailed, err)
	}
	return token, nil
}

// CompleteLink exchanges the public token, resolves the institution and
// registers the linked account. Nothing is stored unless every step succeeds.
func (s *linkService) CompleteLink(ctx context.Context, publicToken string) (*models.LinkedAccount, error) {
	publicToken = strings.TrimSpace(publicToken)
	if publicToken == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "public_token is required")
	}

	accessToken, itemID, err := s.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		s.log.Errorw("Public token exchange failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrLinkFailed, err)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.LinkedAccount{}).Where("item_id = ?", itemID).Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrAlreadyLinked
	}

	institutionID, err := s.provider.GetInstitutionID(ctx, accessToken)
	if err != nil {
		s.log.Errorw("Item lookup failed", "item_id", itemID, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrLinkFailed, err)
	}

	var institutionName *string
	if institutionID != nil {
		name, err := s.provider.GetInstitutionName(ctx, *institutionID)
		if err != nil {
			s.log.Errorw("Institution lookup failed", "item_id", itemID, "institution_id", *institutionID, "error", err)
			return nil, apperrors.Wrap(apperrors.ErrLinkFailed, err)
		}
		institutionName = &name
	}

	sealed, err := s.sealer.Seal(accessToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account := &models.LinkedAccount{
		ItemID:           itemID,
		AccessCredential: sealed,
		InstitutionID:    institutionID,
		InstitutionName:  institutionName,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(account).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrAlreadyLinked, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.log.Infow("Linked account registered", "linked_account_id", account.ID, "item_id", itemID)
	return account, nil
}

// ListLinkedAccounts returns accounts in registration order.
func (s *linkService) ListLinkedAccounts(ctx context.Context) ([]models.LinkedAccount, error) {
	accounts := []models.LinkedAccount{}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}
