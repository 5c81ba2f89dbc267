package repositories

import (
	"errors"
	"sync"
	"time"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// AccountRepository defines the interface for the account store.
type AccountRepository interface {
	// FindByID returns a snapshot of the account.
	FindByID(accountID string) (models.Account, error)
	// Create inserts a new account, failing with ErrAccountExists on an id collision.
	Create(account models.Account) (models.Account, error)
	// Count returns the number of accounts held.
	Count() int
	// WithTransaction runs fn with exclusive access to the store.
	WithTransaction(fn func(tx AccountTx) error) error
	// View runs fn with shared read access to the store. fn must not mutate records.
	View(fn func(tx AccountTx) error) error
}

// AccountTx exposes live records inside a WithTransaction or View callback.
// Records must not be retained after the callback returns.
type AccountTx interface {
	Get(accountID string) (*models.Account, error)
	Insert(account models.Account) (*models.Account, error)
	NextSequence() uint64
}

type AccountRepositoryImpl struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	sequence uint64
	now      func() time.Time
}

// NewAccountRepository returns an empty in-memory store.
func NewAccountRepository() AccountRepository {
	return &AccountRepositoryImpl{
		accounts: make(map[string]*models.Account),
		now:      time.Now,
	}
}

func (r *AccountRepositoryImpl) FindByID(accountID string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[accountID]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (r *AccountRepositoryImpl) Create(account models.Account) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, err := r.insert(account)
	if err != nil {
		return models.Account{}, err
	}
	return stored.Clone(), nil
}

func (r *AccountRepositoryImpl) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// WithTransaction holds the write lock for the duration of fn. Panics release the lock and propagate.
func (r *AccountRepositoryImpl) WithTransaction(fn func(tx AccountTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(writeTx{repo: r})
}

func (r *AccountRepositoryImpl) View(fn func(tx AccountTx) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(readTx{repo: r})
}

// insert requires the write lock.
func (r *AccountRepositoryImpl) insert(account models.Account) (*models.Account, error) {
	if _, exists := r.accounts[account.ID]; exists {
		return nil, ErrAccountExists
	}
	stored := account.Clone()
	if stored.History == nil {
		stored.History = models.History{}
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now().UTC()
	}
	r.accounts[stored.ID] = &stored
	return &stored, nil
}

func (r *AccountRepositoryImpl) get(accountID string) (*models.Account, error) {
	account, ok := r.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

type writeTx struct {
	repo *AccountRepositoryImpl
}

func (tx writeTx) Get(accountID string) (*models.Account, error) {
	return tx.repo.get(accountID)
}

func (tx writeTx) Insert(account models.Account) (*models.Account, error) {
	return tx.repo.insert(account)
}

func (tx writeTx) NextSequence() uint64 {
	tx.repo.sequence++
	return tx.repo.sequence
}

// ErrReadOnly is returned by Insert inside View.
var ErrReadOnly = errors.New("store opened read-only")

type readTx struct {
	repo *AccountRepositoryImpl
}

func (tx readTx) Get(accountID string) (*models.Account, error) {
	return tx.repo.get(accountID)
}

func (tx readTx) Insert(models.Account) (*models.Account, error) {
	return nil, ErrReadOnly
}

func (tx readTx) NextSequence() uint64 {
	return 0
}
