package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu      sync.Mutex
	ByID    map[uuid.UUID]*domain.User
	ByPhone map[string]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:    make(map[uuid.UUID]*domain.User),
		ByPhone: make(map[string]*domain.User),
	}
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	m.ByID[user.ID] = user
	m.ByPhone[user.Phone] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByPhone retrieves a user by phone number
func (m *MockUserRepository) GetByPhone(phone string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.ByPhone[phone]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// UpdateProfile updates the user's name and email
func (m *MockUserRepository) UpdateProfile(id uuid.UUID, name, email *string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if name != nil {
		user.Name = name
	}
	if email != nil {
		user.Email = email
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByID[user.ID] = user
	m.ByPhone[user.Phone] = user
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	mu       sync.Mutex
	Accounts map[int64]*domain.Account
	ByNumber map[string]*domain.Account
	NextID   int64
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int64]*domain.Account),
		ByNumber: make(map[string]*domain.Account),
		NextID:   1,
	}
}

// Create creates a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account.ID = m.NextID
	m.NextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	m.ByNumber[account.Number] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account, ok := m.Accounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetByIDForUser retrieves an account by ID scoped to its owner
func (m *MockAccountRepository) GetByIDForUser(userID uuid.UUID, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetByNumber retrieves an account by its number
func (m *MockAccountRepository) GetByNumber(number string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account, ok := m.ByNumber[number]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetAllByUser lists a user's accounts
func (m *MockAccountRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := []*domain.Account{}
	for _, account := range m.Accounts {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account.ID == 0 {
		account.ID = m.NextID
		m.NextID++
	} else if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	if account.Number == "" {
		account.Number = fmt.Sprintf("PB%012d", account.ID)
	}
	m.Accounts[account.ID] = account
	m.ByNumber[account.Number] = account
	return account
}

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	mu     sync.Mutex
	Loans  map[int64]*domain.Loan
	NextID int64
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans:  make(map[int64]*domain.Loan),
		NextID: 1,
	}
}

// Create creates a new loan
func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan.ID = m.NextID
	m.NextID++
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = loan.CreatedAt
	m.Loans[loan.ID] = loan
	return loan, nil
}

// GetByID retrieves a loan by ID
func (m *MockLoanRepository) GetByID(id int64) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if loan, ok := m.Loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

// GetByIDForUser retrieves a loan by ID scoped to its applicant
func (m *MockLoanRepository) GetByIDForUser(userID uuid.UUID, id int64) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.Loans[id]
	if !ok || loan.UserID != userID {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// GetAllByUser lists a user's loans
func (m *MockLoanRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loans := []*domain.Loan{}
	for _, loan := range m.Loans {
		if loan.UserID == userID {
			loans = append(loans, loan)
		}
	}
	return loans, nil
}

// GetPending lists loans awaiting a decision
func (m *MockLoanRepository) GetPending() ([]*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loans := []*domain.Loan{}
	for _, loan := range m.Loans {
		if loan.Status == domain.LoanStatusPending {
			loans = append(loans, loan)
		}
	}
	return loans, nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []*domain.Transaction
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// Add appends a transaction (helper for tests)
func (m *MockTransactionRepository) Add(tx *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.ID = int64(len(m.Transactions) + 1)
	m.Transactions = append(m.Transactions, tx)
}

// GetByReference retrieves a transaction by reference
func (m *MockTransactionRepository) GetByReference(reference string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range m.Transactions {
		if tx.Reference == reference {
			return tx, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByAccount lists transactions touching the account, newest first
func (m *MockTransactionRepository) GetByAccount(accountID int64, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*domain.Transaction{}
	for i := len(m.Transactions) - 1; i >= 0; i-- {
		tx := m.Transactions[i]
		touches := (tx.FromAccountID != nil && *tx.FromAccountID == accountID) ||
			(tx.ToAccountID != nil && *tx.ToAccountID == accountID)
		if !touches {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		matched = append(matched, tx)
	}

	total := int64(len(matched))
	start := int((filters.Page - 1) * filters.PageSize)
	end := start + int(filters.PageSize)
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	totalPages := int32(total / int64(filters.PageSize))
	if total%int64(filters.PageSize) != 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// MockLedgerRepository is a mock implementation of domain.LedgerRepository.
// It reproduces the storage layer's contract in memory: each method is one
// mutex-serialized atomic unit with a conditional debit, so concurrency tests
// exercise the same overdraft semantics as the PostgreSQL implementation.
type MockLedgerRepository struct {
	mu           sync.Mutex
	Accounts     *MockAccountRepository
	Loans        *MockLoanRepository
	Transactions []*domain.Transaction
	NextID       int64
}

// NewMockLedgerRepository creates a ledger over shared account and loan mocks
func NewMockLedgerRepository(accounts *MockAccountRepository, loans *MockLoanRepository) *MockLedgerRepository {
	return &MockLedgerRepository{
		Accounts: accounts,
		Loans:    loans,
		NextID:   1,
	}
}

// Transfer debits, credits and records the entry atomically
func (m *MockLedgerRepository) Transfer(p domain.TransferParams) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dest, err := m.Accounts.GetByNumber(p.ToAccountNumber)
	if err != nil {
		return nil, domain.ErrDestinationNotFound
	}
	if dest.ID == p.FromAccountID {
		return nil, domain.ErrInvalidInput
	}

	src, err := m.Accounts.GetByIDForUser(p.UserID, p.FromAccountID)
	if err != nil {
		return nil, domain.ErrInsufficientFunds
	}
	if src.Currency != dest.Currency {
		return nil, domain.ErrCurrencyMismatch
	}
	if src.BalanceMinor < p.AmountMinor {
		return nil, domain.ErrInsufficientFunds
	}

	src.BalanceMinor -= p.AmountMinor
	dest.BalanceMinor += p.AmountMinor

	entry := &domain.Transaction{
		Reference:     p.Reference,
		Type:          domain.TransactionTypeTransfer,
		Status:        domain.TransactionStatusCompleted,
		FromAccountID: &src.ID,
		ToAccountID:   &dest.ID,
		AmountMinor:   p.AmountMinor,
		Currency:      src.Currency,
		Note:          p.Note,
	}
	m.record(entry)
	return entry, nil
}

// DecideLoan flips a pending loan and, on approval, credits the funding account
func (m *MockLedgerRepository) DecideLoan(p domain.DecisionParams) (*domain.Loan, *domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, err := m.Loans.GetByID(p.LoanID)
	if err != nil {
		return nil, nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, nil, domain.ErrLoanAlreadyDecided
	}

	now := time.Now()
	loan.DecisionNote = p.DecisionNote
	loan.DecidedByUserID = &p.DecidedByUserID
	loan.DecidedAt = &now
	loan.UpdatedAt = now

	if !p.Approve {
		loan.Status = domain.LoanStatusRejected
		return loan, nil, nil
	}

	account, err := m.Accounts.GetByID(loan.AccountID)
	if err != nil {
		return nil, nil, domain.ErrNotFound
	}
	loan.Status = domain.LoanStatusApproved
	account.BalanceMinor += loan.PrincipalMinor

	entry := &domain.Transaction{
		Reference:   p.Reference,
		Type:        domain.TransactionTypeLoanDisbursement,
		Status:      domain.TransactionStatusCompleted,
		ToAccountID: &account.ID,
		AmountMinor: loan.PrincipalMinor,
		Currency:    loan.Currency,
		Note:        &p.Note,
	}
	m.record(entry)
	return loan, entry, nil
}

// RecordLoanPayment debits one installment and records the entry
func (m *MockLedgerRepository) RecordLoanPayment(p domain.LoanPaymentParams) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, err := m.Accounts.GetByIDForUser(p.UserID, p.AccountID)
	if err != nil {
		return nil, domain.ErrInsufficientFunds
	}
	if account.BalanceMinor < p.AmountMinor {
		return nil, domain.ErrInsufficientFunds
	}
	account.BalanceMinor -= p.AmountMinor

	entry := &domain.Transaction{
		Reference:     p.Reference,
		Type:          domain.TransactionTypeLoanPayment,
		Status:        domain.TransactionStatusCompleted,
		FromAccountID: &account.ID,
		AmountMinor:   p.AmountMinor,
		Currency:      account.Currency,
		Note:          p.Note,
	}
	m.record(entry)
	return entry, nil
}

func (m *MockLedgerRepository) record(entry *domain.Transaction) {
	entry.ID = m.NextID
	m.NextID++
	entry.CreatedAt = time.Now()
	m.Transactions = append(m.Transactions, entry)
}

// EntriesOfType returns recorded entries of the given type (helper for tests)
func (m *MockLedgerRepository) EntriesOfType(t domain.TransactionType) []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []*domain.Transaction{}
	for _, tx := range m.Transactions {
		if tx.Type == t {
			entries = append(entries, tx)
		}
	}
	return entries
}

// MockDocumentRepository is a mock implementation of domain.DocumentRepository
type MockDocumentRepository struct {
	mu        sync.Mutex
	Documents map[int64]*domain.KycDocument
	NextID    int64
}

// NewMockDocumentRepository creates a new MockDocumentRepository
func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		Documents: make(map[int64]*domain.KycDocument),
		NextID:    1,
	}
}

// Create inserts a new document row
func (m *MockDocumentRepository) Create(doc *domain.KycDocument) (*domain.KycDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc.ID = m.NextID
	m.NextID++
	doc.CreatedAt = time.Now()
	m.Documents[doc.ID] = doc
	return doc, nil
}

// GetByID retrieves a document by ID
func (m *MockDocumentRepository) GetByID(id int64) (*domain.KycDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, ok := m.Documents[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

// GetAllByUser lists a user's documents
func (m *MockDocumentRepository) GetAllByUser(userID uuid.UUID) ([]*domain.KycDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := []*domain.KycDocument{}
	for _, doc := range m.Documents {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Review records a verdict on a pending document
func (m *MockDocumentRepository) Review(id int64, status domain.DocumentStatus, reviewedBy uuid.UUID, note *string) (*domain.KycDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.Documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	if doc.Status != domain.DocumentStatusPending {
		return nil, domain.ErrDocumentAlreadyReviewed
	}
	now := time.Now()
	doc.Status = status
	doc.ReviewNote = note
	doc.ReviewedBy = &reviewedBy
	doc.ReviewedAt = &now
	return doc, nil
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one captured Publish call
type PublishedEvent struct {
	UserID uuid.UUID
	Event  websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish captures the event
func (m *MockEventPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// EventsFor returns the events published to one user
func (m *MockEventPublisher) EventsFor(userID uuid.UUID) []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := []websocket.Event{}
	for _, pe := range m.Events {
		if pe.UserID == userID {
			events = append(events, pe.Event)
		}
	}
	return events
}

// MockDocumentStore is an in-memory implementation of storage.DocumentStore
type MockDocumentStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockDocumentStore) Upload(_ context.Context, objectPath string, data io.Reader, _ string, _ int64) (string, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf
	return objectPath, nil
}

// Delete removes the object
func (m *MockDocumentStore) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake URL for the object
func (m *MockDocumentStore) GeneratePresignedURL(_ context.Context, objectPath string, _ time.Duration) (string, error) {
	return "https://storage.test/" + objectPath, nil
}
