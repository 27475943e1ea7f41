// Package bankroll implements the persistent chip balance: staking and
// crediting rounds, one-time top-ups, full resets and the reward shop.
package bankroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoTopUpsRemaining = errors.New("no top-ups remaining")
	ErrUnknownItem       = errors.New("unknown catalog item")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidAmount     = errors.New("amount must not be negative")

	// ErrNotPersisted wraps store failures. The in-memory balance has still
	// changed; the next successful write carries it to the store.
	ErrNotPersisted = errors.New("bankroll not persisted")
)

// Store is the durable key-value store the ledger writes through to.
type Store interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	PutAll(ctx context.Context, values map[string]int64) error
}

// Config holds the economy defaults
type Config struct {
	StartingBalance int
	TopUpAmount     int
	TopUps          int
	Catalog         Catalog
	SaveTimeout     time.Duration
}

// DefaultConfig returns the default economy
func DefaultConfig() Config {
	return Config{
		StartingBalance: 1000,
		TopUpAmount:     500,
		TopUps:          2,
		Catalog:         DefaultCatalog(),
		SaveTimeout:     5 * time.Second,
	}
}

// Receipt confirms a redemption
type Receipt struct {
	Item     Item
	Quantity int
	Total    int
	Balance  int
}

// Ledger is one session's bankroll. It is not safe for concurrent use; the
// table serialises access.
type Ledger struct {
	store   Store
	session string
	cfg     Config
	logger  *log.Logger

	balance int
	topUps  int
}

// Open loads the session's bankroll from the store, falling back to the
// configured defaults for a new session.
func Open(ctx context.Context, store Store, session string, cfg Config, logger *log.Logger) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("bankroll store is required")
	}
	if session == "" {
		return nil, errors.New("session is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}

	l := &Ledger{
		store:   store,
		session: session,
		cfg:     cfg,
		logger:  logger.WithPrefix("bankroll").With("session", session),
		balance: cfg.StartingBalance,
		topUps:  cfg.TopUps,
	}

	balance, ok, err := store.Get(ctx, l.balanceKey())
	if err != nil {
		return nil, fmt.Errorf("load bankroll: %w", err)
	}
	if ok {
		if balance < 0 {
			return nil, fmt.Errorf("stored bankroll for %s is negative: %d", session, balance)
		}
		l.balance = int(balance)
	}

	topUps, ok, err := store.Get(ctx, l.topUpsKey())
	if err != nil {
		return nil, fmt.Errorf("load top-ups: %w", err)
	}
	if ok {
		if topUps < 0 {
			return nil, fmt.Errorf("stored top-ups for %s is negative: %d", session, topUps)
		}
		l.topUps = int(topUps)
	}

	l.logger.Debug("Opened bankroll", "balance", l.balance, "topUps", l.topUps)
	return l, nil
}

func (l *Ledger) balanceKey() string { return l.session + "/bankroll" }
func (l *Ledger) topUpsKey() string  { return l.session + "/top_ups" }

// Session returns the session key
func (l *Ledger) Session() string { return l.session }

// Balance returns the current balance
func (l *Ledger) Balance() int { return l.balance }

// TopUpsRemaining returns how many top-ups are left
func (l *Ledger) TopUpsRemaining() int { return l.topUps }

// TopUpAmount returns the amount each top-up grants
func (l *Ledger) TopUpAmount() int { return l.cfg.TopUpAmount }

// Catalog returns the reward shop
func (l *Ledger) Catalog() Catalog { return l.cfg.Catalog }

// Stake debits amount for a bet.
func (l *Ledger) Stake(amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount > l.balance {
		return fmt.Errorf("%w: stake %d exceeds balance %d", ErrInsufficientFunds, amount, l.balance)
	}
	l.balance -= amount
	return l.save("stake")
}

// Credit adds amount unconditionally.
func (l *Ledger) Credit(amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	l.balance += amount
	return l.save("credit")
}

// GrantTopUp credits the fixed top-up amount and uses one top-up.
func (l *Ledger) GrantTopUp() error {
	if l.topUps <= 0 {
		return ErrNoTopUpsRemaining
	}
	l.topUps--
	l.balance += l.cfg.TopUpAmount
	return l.save("top-up")
}

// Reset restores the starting balance and top-ups.
func (l *Ledger) Reset() error {
	l.balance = l.cfg.StartingBalance
	l.topUps = l.cfg.TopUps
	return l.save("reset")
}

// Redeem buys quantity units of a catalog item. Fixed items only allow a
// quantity of one.
func (l *Ledger) Redeem(id string, quantity int) (Receipt, error) {
	item, ok := l.cfg.Catalog.Lookup(id)
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if quantity < 1 || (!item.Variable && quantity != 1) {
		return Receipt{}, fmt.Errorf("%w: %d × %s", ErrInvalidQuantity, quantity, item.ID)
	}
	// compare by division so huge quantities cannot overflow the product
	if quantity > l.balance/item.UnitCost {
		return Receipt{}, fmt.Errorf("%w: %d × %s costs more than %d", ErrInsufficientFunds, quantity, item.ID, l.balance)
	}

	total := item.UnitCost * quantity
	l.balance -= total
	receipt := Receipt{
		Item:     item,
		Quantity: quantity,
		Total:    total,
		Balance:  l.balance,
	}
	return receipt, l.save("redeem")
}

func (l *Ledger) save(op string) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.SaveTimeout)
	defer cancel()

	err := l.store.PutAll(ctx, map[string]int64{
		l.balanceKey(): int64(l.balance),
		l.topUpsKey():  int64(l.topUps),
	})
	if err != nil {
		l.logger.Error("Failed to persist bankroll", "op", op, "error", err)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	l.logger.Debug("Bankroll updated", "op", op, "balance", l.balance, "topUps", l.topUps)
	return nil
}
