package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/security"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository stores AccountCredentials with their tokens sealed
// by the configured TokenCipher.
type CredentialRepository struct {
	db     *gorm.DB
	cipher *security.TokenCipher
}

func NewCredentialRepository(db *gorm.DB, cipher *security.TokenCipher) *CredentialRepository {
	return &CredentialRepository{db: db, cipher: cipher}
}

func (r *CredentialRepository) FindCredential(ctx context.Context, accountID string, kind models.AccountKind) (*models.AccountCredential, error) {
	var cred models.AccountCredential
	err := r.db.WithContext(ctx).
		Where(map[string]any{
			models.ColCredentialAccountID:   accountID,
			models.ColCredentialAccountKind: kind,
		}).
		Take(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %s: %w", kind, accountID, syncerr.ErrCredentialNotFound)
	}
	if err != nil {
		return nil, err
	}

	if cred.AccessToken, err = r.cipher.Decrypt(cred.AccessToken); err != nil {
		return nil, fmt.Errorf("access token of %s %s: %w", kind, accountID, err)
	}
	if cred.RefreshToken, err = r.cipher.Decrypt(cred.RefreshToken); err != nil {
		return nil, fmt.Errorf("refresh token of %s %s: %w", kind, accountID, err)
	}
	return &cred, nil
}

// SaveCredential inserts the credential or replaces the tokens of the row
// with the same (account id, kind). cred.ID is set to the stored row's id.
func (r *CredentialRepository) SaveCredential(ctx context.Context, cred *models.AccountCredential) error {
	row := *cred
	var err error
	if row.AccessToken, err = r.cipher.Encrypt(cred.AccessToken); err != nil {
		return err
	}
	if row.RefreshToken, err = r.cipher.Encrypt(cred.RefreshToken); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: models.ColCredentialAccountID},
			{Name: models.ColCredentialAccountKind},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"ghl_company_id",
			"access_token",
			"refresh_token",
			"scope",
			"expires_in",
			"updated_at",
		}),
	}).Create(&row).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	var stored models.AccountCredential
	if err := db.Select("id", "created_at").
		Where(map[string]any{
			models.ColCredentialAccountID:   cred.AccountID,
			models.ColCredentialAccountKind: cred.AccountKind,
		}).
		Take(&stored).Error; err != nil {
		return err
	}
	cred.ID = stored.ID
	cred.CreatedAt = stored.CreatedAt
	return nil
}
