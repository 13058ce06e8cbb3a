package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/models"
)

// In-memory store implementations backing the service tests. The payment
// store enforces the transactionId uniqueness the real Mongo index provides.

type memResellerStore struct {
	mu        sync.Mutex
	resellers map[string]*models.Reseller
}

func newMemResellerStore(resellers ...*models.Reseller) *memResellerStore {
	s := &memResellerStore{resellers: make(map[string]*models.Reseller)}
	for _, r := range resellers {
		s.resellers[r.ResellerID] = r
	}
	return s
}

func (s *memResellerStore) GetByResellerID(ctx context.Context, resellerID string) (*models.Reseller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resellers[resellerID]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "reseller", ID: resellerID}
	}
	snapshot := *r
	return &snapshot, nil
}

func (s *memResellerStore) Insert(ctx context.Context, reseller *models.Reseller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resellers[reseller.ResellerID]; ok {
		return &apperrors.DuplicateError{Key: reseller.ResellerID}
	}
	s.resellers[reseller.ResellerID] = reseller
	return nil
}

func (s *memResellerStore) CreditEarnings(ctx context.Context, resellerID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resellers[resellerID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "reseller", ID: resellerID}
	}
	r.Balance += amount
	r.TotalEarnings += amount
	return nil
}

func (s *memResellerStore) IncrementSales(ctx context.Context, resellerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resellers[resellerID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "reseller", ID: resellerID}
	}
	r.TotalSales++
	return nil
}

type memProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newMemProductStore(products ...*models.Product) *memProductStore {
	s := &memProductStore{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "product", ID: id.Hex()}
	}
	return p, nil
}

func (s *memProductStore) Insert(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	s.products[product.ID] = product
	return nil
}

func (s *memProductStore) List(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

type memTransactionStore struct {
	mu  sync.Mutex
	txs []*models.Transaction
}

func newMemTransactionStore(txs ...*models.Transaction) *memTransactionStore {
	return &memTransactionStore{txs: txs}
}

func (s *memTransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	s.txs = append(s.txs, tx)
	return nil
}

func (s *memTransactionStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, &apperrors.NotFoundError{Resource: "transaction", ID: id.Hex()}
}

func (s *memTransactionStore) All(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, *tx)
	}
	return out, nil
}

func (s *memTransactionStore) ListByReseller(ctx context.Context, resellerID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, tx := range s.txs {
		if tx.ResellerID == resellerID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *memTransactionStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			tx.PaymentStatus = status
			return nil
		}
	}
	return &apperrors.NotFoundError{Resource: "transaction", ID: id.Hex()}
}

type memPaymentStore struct {
	mu       sync.Mutex
	linked   map[primitive.ObjectID]*models.Payment // keyed by transactionId
	unlinked []*models.Payment                      // legacy rows without a transaction reference
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{linked: make(map[primitive.ObjectID]*models.Payment)}
}

func (s *memPaymentStore) Insert(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if _, ok := s.linked[payment.TransactionID]; ok {
		return &apperrors.DuplicateError{Key: payment.TransactionID.Hex()}
	}
	s.linked[payment.TransactionID] = payment
	return nil
}

func (s *memPaymentStore) GetByTransactionID(ctx context.Context, txID primitive.ObjectID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.linked[txID]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: txID.Hex()}
	}
	return p, nil
}

func (s *memPaymentStore) FindLegacyMatch(ctx context.Context, resellerID string, amount, commissionAmount float64) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*models.Payment
	for _, p := range s.unlinked {
		if p.ResellerID == resellerID && p.Amount == amount && p.CommissionAmount == commissionAmount {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: resellerID}
	case 1:
		return matches[0], nil
	default:
		return nil, &apperrors.DuplicateError{Key: resellerID}
	}
}

func (s *memPaymentStore) LinkTransaction(ctx context.Context, paymentID, txID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.linked[txID]; ok {
		return &apperrors.DuplicateError{Key: txID.Hex()}
	}
	for i, p := range s.unlinked {
		if p.ID == paymentID {
			p.TransactionID = txID
			s.linked[txID] = p
			s.unlinked = append(s.unlinked[:i], s.unlinked[i+1:]...)
			return nil
		}
	}
	return &apperrors.NotFoundError{Resource: "payment", ID: paymentID.Hex()}
}

func (s *memPaymentStore) UpdatePayout(ctx context.Context, paymentID primitive.ObjectID, status, gatewayTxID, lastErr string, attempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.linked {
		if p.ID == paymentID {
			p.PayoutStatus = status
			p.PayoutAttempts = attempts
			p.LastPayoutError = lastErr
			if gatewayTxID != "" {
				p.PayoutTransactionID = gatewayTxID
			}
			return nil
		}
	}
	return &apperrors.NotFoundError{Resource: "payment", ID: paymentID.Hex()}
}

// findByID must be called with the lock held.
func (s *memPaymentStore) findByID(id primitive.ObjectID) *models.Payment {
	for _, p := range s.linked {
		if p.ID == id {
			return p
		}
	}
	for _, p := range s.unlinked {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *memPaymentStore) Decide(ctx context.Context, id primitive.ObjectID, approval, note string, adminID *primitive.ObjectID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findByID(id)
	if p == nil {
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: id.Hex()}
	}
	if p.AdminApproval != models.ApprovalPending {
		return nil, &apperrors.ConflictError{Message: "payment is already " + p.AdminApproval}
	}
	p.AdminApproval = approval
	if note != "" {
		p.AdminNote = note
	}
	if adminID != nil {
		p.AdminID = adminID
	}
	now := time.Now()
	p.ProcessedAt = &now
	snapshot := *p
	return &snapshot, nil
}

func (s *memPaymentStore) BeginPayout(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findByID(id)
	if p == nil {
		return nil, &apperrors.NotFoundError{Resource: "payment", ID: id.Hex()}
	}
	switch {
	case p.AdminApproval != models.ApprovalApproved:
		return nil, &apperrors.ConflictError{Message: "only approved payments can be disbursed"}
	case p.PayoutStatus == models.PayoutCompleted:
		return nil, &apperrors.ConflictError{Message: "payout already completed"}
	case p.PayoutStatus == models.PayoutPending:
		return nil, &apperrors.ConflictError{Message: "payout already in progress"}
	}
	p.PayoutStatus = models.PayoutPending
	snapshot := *p
	return &snapshot, nil
}

func (s *memPaymentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.linked) + len(s.unlinked)
}

type memFraudAlertStore struct {
	mu     sync.Mutex
	alerts []*models.FraudAlert
}

func newMemFraudAlertStore() *memFraudAlertStore {
	return &memFraudAlertStore{}
}

func (s *memFraudAlertStore) Insert(ctx context.Context, alert *models.FraudAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	alert.Status = models.FraudAlertOpen
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *memFraudAlertStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

type memCommissionStore struct {
	mu          sync.Mutex
	commissions map[primitive.ObjectID]*models.Commission
}

func newMemCommissionStore() *memCommissionStore {
	return &memCommissionStore{commissions: make(map[primitive.ObjectID]*models.Commission)}
}

func (s *memCommissionStore) Insert(ctx context.Context, commission *models.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.commissions[commission.TransactionID]; ok {
		return &apperrors.DuplicateError{Key: commission.TransactionID.Hex()}
	}
	if commission.ID.IsZero() {
		commission.ID = primitive.NewObjectID()
	}
	s.commissions[commission.TransactionID] = commission
	return nil
}

func (s *memCommissionStore) GetByTransactionID(ctx context.Context, txID primitive.ObjectID) (*models.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.commissions[txID]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "commission", ID: txID.Hex()}
	}
	return cm, nil
}

func (s *memCommissionStore) SetStatusByTransaction(ctx context.Context, txID primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cm, ok := s.commissions[txID]; ok {
		cm.Status = status
	}
	return nil
}
