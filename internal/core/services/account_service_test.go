package services_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/financiera/banking-backend/internal/apperrors"
	"github.com/financiera/banking-backend/internal/core/domain"
	portssvc "github.com/financiera/banking-backend/internal/core/ports/services"
	"github.com/financiera/banking-backend/internal/core/services"
	"github.com/financiera/banking-backend/internal/dto"
	"github.com/financiera/banking-backend/internal/utils/numbering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockCustomerVerifier is a mock type for the CustomerVerifier interface
type MockCustomerVerifier struct {
	mock.Mock
}

func (m *MockCustomerVerifier) CustomerExists(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo      *MockAccountRepository
	mockCustomers *MockCustomerVerifier
	service       portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.mockCustomers = new(MockCustomerVerifier)
	// Fixed seed keeps number allocation deterministic under test.
	allocator := numbering.NewAllocator(rand.New(rand.NewSource(1)))
	suite.service = services.NewAccountService(suite.mockRepo, allocator, suite.mockCustomers)
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_SavingsSuccess() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	req := dto.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: domain.Savings,
	}

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(true, nil).Once()
	suite.mockRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(ownerID, account.OwnerID)
	suite.Equal(domain.Savings, account.AccountType)
	suite.Len(account.AccountNumber, 10)
	suite.Equal("53", account.AccountNumber[:2])
	suite.Equal(domain.StatusActive, account.Status)
	suite.True(account.Balance.IsZero())
	suite.False(account.GMFExempt)
	suite.Equal(int64(1), account.Version)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)
	suite.WithinDuration(time.Now(), account.LastUpdatedAt, time.Second)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCustomers.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CheckingPrefix() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	gmfExempt := true
	req := dto.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: domain.Checking,
		GMFExempt:   &gmfExempt,
	}

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(true, nil).Once()
	suite.mockRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Equal("33", account.AccountNumber[:2])
	suite.True(account.GMFExempt)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownCustomer() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	req := dto.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: domain.Savings,
	}

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(false, nil).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(account)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RetriesTakenNumber() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	req := dto.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: domain.Savings,
	}

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(true, nil).Once()
	// First candidate is taken; the allocator draws again.
	suite.mockRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
	suite.mockRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Equal("53", account.AccountNumber[:2])
	suite.mockRepo.AssertNumberOfCalls(suite.T(), "ExistsByNumber", 2)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_AllocationExhausted() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	req := dto.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: domain.Checking,
	}

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(true, nil).Once()
	// Every candidate is taken until the attempt budget runs out.
	suite.mockRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string")).Return(true, nil).Times(5)

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAllocationExhausted)
	suite.Nil(account)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SaveError() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	req := dto.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: domain.Savings,
	}
	expectedErr := assert.AnError

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(true, nil).Once()
	suite.mockRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(expectedErr).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
	suite.Nil(account)
}

// --- Lookups ---

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.GetAccountByID(ctx, accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestGetAccountByNumber_Success() {
	ctx := context.Background()
	expected := activeAccount(domain.Savings, 100)

	suite.mockRepo.On("FindAccountByNumber", ctx, expected.AccountNumber).Return(&expected, nil).Once()

	account, err := suite.service.GetAccountByNumber(ctx, expected.AccountNumber)

	suite.Require().NoError(err)
	suite.Equal(&expected, account)
}

func (suite *AccountServiceTestSuite) TestListAccountsByOwner_UnknownCustomer() {
	ctx := context.Background()
	ownerID := uuid.NewString()

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(false, nil).Once()

	accounts, err := suite.service.ListAccountsByOwner(ctx, ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(accounts)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListAccountsByOwner", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestListAccountsByOwner_EmptyIsNotAnError() {
	ctx := context.Background()
	ownerID := uuid.NewString()

	suite.mockCustomers.On("CustomerExists", ctx, ownerID).Return(true, nil).Once()
	suite.mockRepo.On("ListAccountsByOwner", ctx, ownerID).Return([]domain.Account{}, nil).Once()

	accounts, err := suite.service.ListAccountsByOwner(ctx, ownerID)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
}

func (suite *AccountServiceTestSuite) TestCountAccountsByOwner() {
	ctx := context.Background()
	ownerID := uuid.NewString()

	suite.mockRepo.On("CountAccountsByOwner", ctx, ownerID).Return(int64(3), nil).Once()

	count, err := suite.service.CountAccountsByOwner(ctx, ownerID)

	suite.Require().NoError(err)
	suite.Equal(int64(3), count)
}

// --- Status lifecycle ---

func (suite *AccountServiceTestSuite) TestSetAccountStatus_ActiveToInactive() {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 100)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("UpdateAccountStatus", ctx, account.AccountID, domain.StatusInactive, account.Version, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusInactive)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusInactive, updated.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestSetAccountStatus_InactiveToActive() {
	ctx := context.Background()
	account := activeAccount(domain.Checking, 0)
	account.Status = domain.StatusInactive

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("UpdateAccountStatus", ctx, account.AccountID, domain.StatusActive, account.Version, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusActive)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusActive, updated.Status)
}

func (suite *AccountServiceTestSuite) TestSetAccountStatus_CancelZeroBalance() {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 0)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("UpdateAccountStatus", ctx, account.AccountID, domain.StatusCancelled, account.Version, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusCancelled)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, updated.Status)
}

func (suite *AccountServiceTestSuite) TestSetAccountStatus_CancelNonZeroBalanceRejected() {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 100)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusCancelled)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCannotCancel)
	suite.Nil(updated)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccountStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestSetAccountStatus_CancelledIsTerminal() {
	ctx := context.Background()
	account := activeAccount(domain.Checking, 0)
	account.Status = domain.StatusCancelled

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusActive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidOperation)
	suite.Nil(updated)
}

func (suite *AccountServiceTestSuite) TestSetAccountStatus_RetriesOnVersionConflict() {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 100)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Twice()
	// The first guarded write loses to a concurrent writer; the transition is
	// re-validated and the second write lands.
	suite.mockRepo.On("UpdateAccountStatus", ctx, account.AccountID, domain.StatusInactive, account.Version, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConflict).Once()
	suite.mockRepo.On("UpdateAccountStatus", ctx, account.AccountID, domain.StatusInactive, account.Version, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusInactive)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusInactive, updated.Status)
	suite.mockRepo.AssertNumberOfCalls(suite.T(), "FindAccountByID", 2)
}

func (suite *AccountServiceTestSuite) TestSetAccountStatus_CancelOverdrawnCheckingRejected() {
	ctx := context.Background()
	account := activeAccount(domain.Checking, 0)
	account.Balance = decimal.NewFromInt(-25)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()

	updated, err := suite.service.SetAccountStatus(ctx, account.AccountID, domain.StatusCancelled)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCannotCancel)
	suite.Nil(updated)
}

// --- DeleteAccount ---

func (suite *AccountServiceTestSuite) TestDeleteAccount_ZeroBalance() {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 0)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("DeleteAccount", ctx, account.AccountID).Return(nil).Once()

	err := suite.service.DeleteAccount(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_NonZeroBalanceRejected() {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 100)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()

	err := suite.service.DeleteAccount(ctx, account.AccountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidOperation)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeleteAccount(ctx, accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Runner ---

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

// --- Lifecycle races ---

func newFakeBackedAccountService(store *fakeLedgerStore) portssvc.AccountSvcFacade {
	allocator := numbering.NewAllocator(rand.New(rand.NewSource(1)))
	return services.NewAccountService(store, allocator, new(MockCustomerVerifier))
}

// TestSetAccountStatus_CancelLosesRaceWithDeposit commits a deposit inside
// the window between the zero-balance read and the status write. The stale
// cancellation must not land; re-validation against the fresh state rejects
// it and the account stays active with its money.
func TestSetAccountStatus_CancelLosesRaceWithDeposit(t *testing.T) {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 0)
	store := newFakeLedgerStore(account)
	ledger := services.NewLedgerService(store, store)
	accountsSvc := newFakeBackedAccountService(store)

	var depositErr error
	store.beforeStatusWrite = func() {
		_, depositErr = ledger.Deposit(ctx, dto.DepositRequest{
			AccountID: account.AccountID,
			Amount:    decimal.NewFromInt(500),
		})
	}

	updated, err := accountsSvc.SetAccountStatus(ctx, account.AccountID, domain.StatusCancelled)

	if depositErr != nil {
		t.Fatalf("interleaved deposit failed: %v", depositErr)
	}
	if err == nil {
		t.Fatal("cancellation landed over a concurrent deposit")
	}
	if !errors.Is(err, apperrors.ErrCannotCancel) {
		t.Fatalf("got %v, want ErrCannotCancel", err)
	}
	if updated != nil {
		t.Fatalf("rejected transition returned an account: %+v", updated)
	}

	final, lookupErr := store.FindAccountByID(ctx, account.AccountID)
	if lookupErr != nil {
		t.Fatalf("final lookup failed: %v", lookupErr)
	}
	if final.Status != domain.StatusActive {
		t.Fatalf("account status is %s, want %s", final.Status, domain.StatusActive)
	}
	if !final.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("final balance is %s, want 500", final.Balance)
	}
}

// TestSetAccountStatus_StaleWriteCannotReviveCancelled interleaves a
// cancellation between another transition's read and write. The stale write
// must not overwrite the terminal state.
func TestSetAccountStatus_StaleWriteCannotReviveCancelled(t *testing.T) {
	ctx := context.Background()
	account := activeAccount(domain.Checking, 0)
	store := newFakeLedgerStore(account)
	accountsSvc := newFakeBackedAccountService(store)

	var cancelErr error
	store.beforeStatusWrite = func() {
		_, cancelErr = accountsSvc.SetAccountStatus(ctx, account.AccountID, domain.StatusCancelled)
	}

	_, err := accountsSvc.SetAccountStatus(ctx, account.AccountID, domain.StatusInactive)

	if cancelErr != nil {
		t.Fatalf("interleaved cancellation failed: %v", cancelErr)
	}
	if !errors.Is(err, apperrors.ErrInvalidOperation) {
		t.Fatalf("got %v, want ErrInvalidOperation", err)
	}

	final, lookupErr := store.FindAccountByID(ctx, account.AccountID)
	if lookupErr != nil {
		t.Fatalf("final lookup failed: %v", lookupErr)
	}
	if final.Status != domain.StatusCancelled {
		t.Fatalf("account status is %s, cancellation must be terminal", final.Status)
	}
}

// TestDeleteAccount_HistoryBlocksDeletion drains an account back to zero and
// then tries to delete it. The ledger records still reference the account, so
// the store rejects the deletion like the database's foreign keys would.
func TestDeleteAccount_HistoryBlocksDeletion(t *testing.T) {
	ctx := context.Background()
	account := activeAccount(domain.Savings, 0)
	store := newFakeLedgerStore(account)
	ledger := services.NewLedgerService(store, store)
	accountsSvc := newFakeBackedAccountService(store)

	if _, err := ledger.Deposit(ctx, dto.DepositRequest{AccountID: account.AccountID, Amount: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := ledger.Withdraw(ctx, dto.WithdrawRequest{AccountID: account.AccountID, Amount: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}

	err := accountsSvc.DeleteAccount(ctx, account.AccountID)

	if !errors.Is(err, apperrors.ErrInvalidOperation) {
		t.Fatalf("got %v, want ErrInvalidOperation", err)
	}
	if _, lookupErr := store.FindAccountByID(ctx, account.AccountID); lookupErr != nil {
		t.Fatalf("account vanished despite rejected deletion: %v", lookupErr)
	}
}
