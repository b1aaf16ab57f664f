package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"farmgate/internal/registration/models"
	"farmgate/internal/registration/store/account"
	vmodels "farmgate/internal/verification/models"
	"farmgate/pkg/platform/sentinel"
)

// directory is the account store surface exercised by the contract suite.
type directory interface {
	UpsertAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	UpsertFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error
	UpsertConsumerProfile(ctx context.Context, profile *models.ConsumerProfile) error
	FindByIdentity(ctx context.Context, identityUID string) (*models.Account, error)
	FindByID(ctx context.Context, accountID string) (*models.Account, error)
	FarmerProfile(ctx context.Context, identityUID string) (*models.FarmerProfile, error)
	ConsumerProfile(ctx context.Context, identityUID string) (*models.ConsumerProfile, error)
}

// AccountStoreSuite runs the same contract against each backend.
type AccountStoreSuite struct {
	suite.Suite
	newStore func() directory
	reset    func()
	store    directory
	created  time.Time
}

func TestInMemoryAccountStore(t *testing.T) {
	suite.Run(t, &AccountStoreSuite{
		newStore: func() directory { return account.NewInMemory() },
	})
}

func (s *AccountStoreSuite) SetupTest() {
	if s.reset != nil {
		s.reset()
	}
	s.store = s.newStore()
	s.created = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *AccountStoreSuite) newAccount(identityUID string) *models.Account {
	return &models.Account{
		ID:          uuid.NewString(),
		IdentityUID: identityUID,
		Role:        models.RoleFarmer,
		Email:       "juan@example.com",
		Phone:       "+639171234567",
		DisplayName: "Juan Santos",
		CreatedAt:   s.created,
	}
}

func (s *AccountStoreSuite) TestUpsertAccountIsIdempotent() {
	ctx := context.Background()
	uid := uuid.NewString()

	first, err := s.store.UpsertAccount(ctx, s.newAccount(uid))
	s.Require().NoError(err)

	retry := s.newAccount(uid)
	retry.Email = "juan.santos@example.com"
	retry.CreatedAt = s.created.Add(time.Hour)
	second, err := s.store.UpsertAccount(ctx, retry)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.True(first.CreatedAt.Equal(second.CreatedAt))
	s.Equal("juan.santos@example.com", second.Email)

	byID, err := s.store.FindByID(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(uid, byID.IdentityUID)
}

func (s *AccountStoreSuite) TestFarmerProfileCarriesEvidence() {
	ctx := context.Background()
	uid := uuid.NewString()
	_, err := s.store.UpsertAccount(ctx, s.newAccount(uid))
	s.Require().NoError(err)

	profile := &models.FarmerProfile{
		IdentityUID: uid,
		FarmName:    "Santos Rice Farm",
		FarmAddress: "Brgy. Poblacion, Nueva Ecija",
		Evidence: vmodels.Evidence{
			FaceScore:      92,
			ExtractedName:  "Juan D. Santos",
			IDImageURL:     "https://img/id.jpg",
			SelfieImageURL: "https://img/selfie.png",
			ClaimedIDType:  vmodels.IDTypePhilSys,
		},
		CreatedAt: s.created,
	}
	s.Require().NoError(s.store.UpsertFarmerProfile(ctx, profile))
	s.Require().NoError(s.store.UpsertFarmerProfile(ctx, profile))

	got, err := s.store.FarmerProfile(ctx, uid)
	s.Require().NoError(err)
	s.Equal("Santos Rice Farm", got.FarmName)
	s.Equal(92.0, got.Evidence.FaceScore)
	s.Equal("Juan D. Santos", got.Evidence.ExtractedName)
	s.Equal(vmodels.IDTypePhilSys, got.Evidence.ClaimedIDType)
}

func (s *AccountStoreSuite) TestConsumerProfile() {
	ctx := context.Background()
	uid := uuid.NewString()
	acct := s.newAccount(uid)
	acct.Role = models.RoleConsumer
	_, err := s.store.UpsertAccount(ctx, acct)
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpsertConsumerProfile(ctx, &models.ConsumerProfile{
		IdentityUID:     uid,
		DeliveryAddress: "12 Mabini St, Quezon City",
		CreatedAt:       s.created,
	}))

	got, err := s.store.ConsumerProfile(ctx, uid)
	s.Require().NoError(err)
	s.Equal("12 Mabini St, Quezon City", got.DeliveryAddress)
}

func (s *AccountStoreSuite) TestMissing() {
	ctx := context.Background()
	_, err := s.store.FindByIdentity(ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByID(ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FarmerProfile(ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
