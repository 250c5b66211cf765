package ledger

import (
	"sort"
	"sync"
	"time"

	"dating_platform/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Entry describes one balance mutation. Amount must be positive; Action
// decides the sign.
type Entry struct {
	Operation   string // domain.OperationWallet or domain.OperationCoin
	Action      string // domain.ActionCredit or domain.ActionDebit
	Amount      decimal.Decimal
	Message     string
	EarningType string // optional: call, gift, other
	CreatedByID *uint  // acting admin, if any
}

// Balance mutations for the same user are serialized through a sharded
// in-process lock so concurrent requests cannot interleave the
// read-modify-write. Cross-process safety comes from the surrounding
// database transaction.
var lockShards [64]sync.Mutex

func shardFor(userID uint) int { return int(userID % uint(len(lockShards))) }

// WithUsers acquires the balance locks for the given users (in shard order,
// so two callers can never deadlock) and runs fn inside one database
// transaction. Use it when a single unit of work moves money for more than
// one user, e.g. referral bonuses or gift transfers.
func WithUsers(db *gorm.DB, userIDs []uint, fn func(tx *gorm.DB) error) error {
	shards := make([]int, 0, len(userIDs))
	seen := map[int]bool{}
	for _, id := range userIDs {
		if s := shardFor(id); !seen[s] {
			seen[s] = true
			shards = append(shards, s)
		}
	}
	sort.Ints(shards)
	for _, s := range shards {
		lockShards[s].Lock()
	}
	defer func() {
		for i := len(shards) - 1; i >= 0; i-- {
			lockShards[shards[i]].Unlock()
		}
	}()
	return db.Transaction(fn)
}

// Apply performs one balance mutation as its own unit of work: lock the
// user, open a transaction, mutate the balance and append the ledger row.
func Apply(db *gorm.DB, userID uint, entry Entry) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := WithUsers(db, []uint{userID}, func(tx *gorm.DB) error {
		var applyErr error
		created, applyErr = ApplyTx(tx, userID, entry)
		return applyErr
	})
	return created, err
}

// ApplyTx performs one balance mutation inside an already-open transaction.
// The caller must hold the user's lock (see WithUsers). Contract:
//
//	(a) new balance = current ± amount
//	(b) a debit that would go negative fails with ErrInsufficientBalance
//	    and persists nothing
//	(c) the new balance is written to the user row
//	(d) exactly one Transaction is appended with BalanceAfter = new balance
//
// Every call site that moves money — gifts, call billing, withdrawal debit
// and refund, referral bonuses, reward approval, recharge credit, admin
// manual adjustments — goes through here.
func ApplyTx(tx *gorm.DB, userID uint, entry Entry) (*domain.Transaction, error) {
	if !entry.Amount.IsPositive() {
		return nil, domain.ErrInsufficientBalance
	}
	var user domain.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	field := domain.BalanceWallet
	current := user.WalletBalance
	if entry.Operation == domain.OperationCoin {
		field = domain.BalanceCoin
		current = user.CoinBalance
	}

	var newBalance decimal.Decimal
	switch entry.Action {
	case domain.ActionDebit:
		newBalance = current.Sub(entry.Amount)
		if newBalance.IsNegative() {
			return nil, domain.ErrInsufficientBalance
		}
	default:
		newBalance = current.Add(entry.Amount)
	}

	if err := tx.Model(&domain.User{}).Where("id = ?", userID).
		Update(field, newBalance).Error; err != nil {
		return nil, err
	}

	row := domain.Transaction{
		UserID:        userID,
		UserRole:      user.Role,
		OperationType: entry.Operation,
		Action:        entry.Action,
		Amount:        entry.Amount,
		BalanceAfter:  newBalance,
		Message:       entry.Message,
		EarningType:   entry.EarningType,
		Reference:     uuid.NewString(),
		CreatedByID:   entry.CreatedByID,
		CreatedAt:     time.Now(),
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":       userID,
		"user_role":     user.Role,
		"operation":     entry.Operation,
		"action":        entry.Action,
		"amount":        entry.Amount.String(),
		"balance_after": newBalance.String(),
		"message":       entry.Message,
	}).Info("Ledger entry applied")

	return &row, nil
}
