package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"farmgate/internal/registration/models"
	vmodels "farmgate/internal/verification/models"
	"farmgate/pkg/platform/sentinel"
)

// PostgresStore is the account directory backed by the accounts and profile
// tables. Every write is an upsert on identity_uid.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, identity_uid, role, email, phone, display_name, created_at`

func (s *PostgresStore) UpsertAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identity_uid) DO UPDATE SET
			role = EXCLUDED.role,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			display_name = EXCLUDED.display_name
		RETURNING `+accountColumns,
		account.ID, account.IdentityUID, string(account.Role), account.Email, account.Phone, account.DisplayName, account.CreatedAt)

	stored, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) UpsertFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error {
	evidence, err := json.Marshal(profile.Evidence)
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO farmer_profiles (identity_uid, farm_name, farm_address, evidence, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity_uid) DO UPDATE SET
			farm_name = EXCLUDED.farm_name,
			farm_address = EXCLUDED.farm_address,
			evidence = EXCLUDED.evidence`,
		profile.IdentityUID, profile.FarmName, profile.FarmAddress, evidence, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert farmer profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertConsumerProfile(ctx context.Context, profile *models.ConsumerProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consumer_profiles (identity_uid, delivery_address, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity_uid) DO UPDATE SET
			delivery_address = EXCLUDED.delivery_address`,
		profile.IdentityUID, profile.DeliveryAddress, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert consumer profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, identityUID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE identity_uid = $1`, identityUID)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("find account by identity: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) FarmerProfile(ctx context.Context, identityUID string) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	var evidence []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT identity_uid, farm_name, farm_address, evidence, created_at
		FROM farmer_profiles WHERE identity_uid = $1`, identityUID).
		Scan(&profile.IdentityUID, &profile.FarmName, &profile.FarmAddress, &evidence, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find farmer profile: %w", err)
	}
	var ev vmodels.Evidence
	if err := json.Unmarshal(evidence, &ev); err != nil {
		return nil, fmt.Errorf("decode evidence: %w", err)
	}
	profile.Evidence = ev
	return &profile, nil
}

func (s *PostgresStore) ConsumerProfile(ctx context.Context, identityUID string) (*models.ConsumerProfile, error) {
	var profile models.ConsumerProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT identity_uid, delivery_address, created_at
		FROM consumer_profiles WHERE identity_uid = $1`, identityUID).
		Scan(&profile.IdentityUID, &profile.DeliveryAddress, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find consumer profile: %w", err)
	}
	return &profile, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	var role string
	err := row.Scan(&account.ID, &account.IdentityUID, &role, &account.Email, &account.Phone, &account.DisplayName, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	account.Role = models.Role(role)
	return &account, nil
}
