// Package memstore is an in-memory storage.Store. It backs the service tests
// and local runs without Postgres. Atomic takes the store-wide write lock, so
// every unit is serialized; the state is snapshotted when a unit starts and
// restored on error, which gives the same all-or-nothing behavior as a
// database transaction.
package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
)

type Store struct {
	mu sync.RWMutex

	accounts map[int64]*models.Account
	lots     map[int64]*models.AssetLot
	txs      map[int64]*models.Transaction
	edges    map[int64]*models.ReferralEdge
	runs     map[string]struct{}

	nextAccountId int64
	nextLotId     int64
	nextTxId      int64
	nextEdgeId    int64
}

func New() *Store {
	return &Store{
		accounts: make(map[int64]*models.Account),
		lots:     make(map[int64]*models.AssetLot),
		txs:      make(map[int64]*models.Transaction),
		edges:    make(map[int64]*models.ReferralEdge),
		runs:     make(map[string]struct{}),
	}
}

func (s *Store) CreateAccount(_ context.Context, acc *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.TelegramId == acc.TelegramId {
			return models.ErrAccountExists
		}
	}
	s.nextAccountId++
	acc.Id = sql.NullInt64{Int64: s.nextAccountId, Valid: true}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	cp := *acc
	s.accounts[cp.Id.Int64] = &cp
	return nil
}

func (s *Store) AccountById(_ context.Context, id int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountById(id)
}

func (s *Store) accountById(id int64) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) AccountByTelegramId(_ context.Context, telegramId int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.TelegramId == telegramId {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (s *Store) AccountByReferralCode(_ context.Context, code string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ReferralCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (s *Store) AccountIds(_ context.Context, includeBanned bool) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.accounts))
	for id, a := range s.accounts {
		if a.Banned && !includeBanned {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) CountAccounts(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	banned := 0
	for _, a := range s.accounts {
		if a.Banned {
			banned++
		}
	}
	return len(s.accounts), banned, nil
}

func (s *Store) ActiveQuantities(_ context.Context, accountId int64, now time.Time) (map[models.AssetType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeQuantities(accountId, now), nil
}

func (s *Store) activeQuantities(accountId int64, now time.Time) map[models.AssetType]int {
	q := make(map[models.AssetType]int)
	for _, t := range models.AssetTypes() {
		q[t] = 0
	}
	for _, l := range s.lots {
		if l.AccountId == accountId && l.Active(now) {
			q[l.Type] += l.Quantity
		}
	}
	return q
}

func (s *Store) PurgeExpiredLots(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, l := range s.lots {
		if !now.Before(l.ExpiresAt) {
			delete(s.lots, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) TransactionById(_ context.Context, id int64) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionById(id)
}

func (s *Store) transactionById(id int64) (*models.Transaction, error) {
	t, ok := s.txs[id]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) ListTransactions(_ context.Context, accountId int64, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range s.txs {
		if t.AccountId == accountId {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id.Int64 > out[j].Id.Int64
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) TotalApprovedDeposits(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for _, t := range s.txs {
		if t.Kind == models.TxDeposit && t.Status == models.StatusApproved {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (s *Store) ReferralCount(_ context.Context, referrerId int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.referralCount(referrerId), nil
}

func (s *Store) referralCount(referrerId int64) int {
	n := 0
	for _, e := range s.edges {
		if e.ReferrerId == referrerId {
			n++
		}
	}
	return n
}

func (s *Store) ReferralEarnings(_ context.Context, referrerId int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for _, e := range s.edges {
		if e.ReferrerId == referrerId {
			sum += e.Earned
		}
	}
	return sum, nil
}

func (s *Store) BeginDistribution(_ context.Context, period string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[period]; ok {
		return false, nil
	}
	s.runs[period] = struct{}{}
	return true, nil
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapState struct {
	accounts map[int64]models.Account
	lots     map[int64]models.AssetLot
	txs      map[int64]models.Transaction
	edges    map[int64]models.ReferralEdge
	nextIds  [4]int64
}

func (s *Store) snapshot() *snapState {
	st := &snapState{
		accounts: make(map[int64]models.Account, len(s.accounts)),
		lots:     make(map[int64]models.AssetLot, len(s.lots)),
		txs:      make(map[int64]models.Transaction, len(s.txs)),
		edges:    make(map[int64]models.ReferralEdge, len(s.edges)),
		nextIds:  [4]int64{s.nextAccountId, s.nextLotId, s.nextTxId, s.nextEdgeId},
	}
	for id, a := range s.accounts {
		st.accounts[id] = *a
	}
	for id, l := range s.lots {
		st.lots[id] = *l
	}
	for id, t := range s.txs {
		st.txs[id] = *t
	}
	for id, e := range s.edges {
		st.edges[id] = *e
	}
	return st
}

func (s *Store) restore(st *snapState) {
	s.accounts = make(map[int64]*models.Account, len(st.accounts))
	for id := range st.accounts {
		a := st.accounts[id]
		s.accounts[id] = &a
	}
	s.lots = make(map[int64]*models.AssetLot, len(st.lots))
	for id := range st.lots {
		l := st.lots[id]
		s.lots[id] = &l
	}
	s.txs = make(map[int64]*models.Transaction, len(st.txs))
	for id := range st.txs {
		t := st.txs[id]
		s.txs[id] = &t
	}
	s.edges = make(map[int64]*models.ReferralEdge, len(st.edges))
	for id := range st.edges {
		e := st.edges[id]
		s.edges[id] = &e
	}
	s.nextAccountId, s.nextLotId, s.nextTxId, s.nextEdgeId =
		st.nextIds[0], st.nextIds[1], st.nextIds[2], st.nextIds[3]
}

// memTx operates on the store while Atomic holds the write lock.
type memTx struct {
	s *Store
}

func (t *memTx) LockAccount(_ context.Context, id int64) (*models.Account, error) {
	return t.s.accountById(id)
}

func (t *memTx) UpdateAccount(_ context.Context, acc *models.Account) error {
	if !acc.Id.Valid {
		return models.ErrAccountNotFound
	}
	if _, ok := t.s.accounts[acc.Id.Int64]; !ok {
		return models.ErrAccountNotFound
	}
	cp := *acc
	t.s.accounts[cp.Id.Int64] = &cp
	return nil
}

func (t *memTx) ActiveQuantities(_ context.Context, accountId int64, now time.Time) (map[models.AssetType]int, error) {
	return t.s.activeQuantities(accountId, now), nil
}

func (t *memTx) InsertLot(_ context.Context, lot *models.AssetLot) error {
	t.s.nextLotId++
	lot.Id = sql.NullInt64{Int64: t.s.nextLotId, Valid: true}
	if lot.PurchasedAt.IsZero() {
		lot.PurchasedAt = time.Now()
	}
	cp := *lot
	t.s.lots[cp.Id.Int64] = &cp
	return nil
}

func (t *memTx) DecrementLotQuantity(_ context.Context, accountId int64, at models.AssetType, quantity int, now time.Time) error {
	var active []*models.AssetLot
	for _, l := range t.s.lots {
		if l.AccountId == accountId && l.Type == at && l.Active(now) {
			active = append(active, l)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].PurchasedAt.Before(active[j].PurchasedAt)
	})
	remaining := quantity
	for _, l := range active {
		if remaining == 0 {
			break
		}
		take := l.Quantity
		if take > remaining {
			take = remaining
		}
		l.Quantity -= take
		remaining -= take
	}
	if remaining > 0 {
		return models.ErrInsufficientQuantity
	}
	return nil
}

func (t *memTx) DeleteLots(_ context.Context, accountId int64) error {
	for id, l := range t.s.lots {
		if l.AccountId == accountId {
			delete(t.s.lots, id)
		}
	}
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr *models.Transaction) error {
	t.s.nextTxId++
	tr.Id = sql.NullInt64{Int64: t.s.nextTxId, Valid: true}
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now()
	}
	cp := *tr
	t.s.txs[cp.Id.Int64] = &cp
	return nil
}

func (t *memTx) TransactionById(_ context.Context, id int64) (*models.Transaction, error) {
	return t.s.transactionById(id)
}

func (t *memTx) TransitionStatus(_ context.Context, txId int64, from, to models.TxStatus) (bool, error) {
	tr, ok := t.s.txs[txId]
	if !ok {
		return false, models.ErrTransactionNotFound
	}
	if tr.Status != from {
		return false, nil
	}
	tr.Status = to
	return true, nil
}

func (t *memTx) SumApprovedDeposits(_ context.Context, accountId int64) (float64, error) {
	var sum float64
	for _, tr := range t.s.txs {
		if tr.AccountId == accountId && tr.Kind == models.TxDeposit && tr.Status == models.StatusApproved {
			sum += tr.Amount
		}
	}
	return sum, nil
}

func (t *memTx) HasPendingWithdrawal(_ context.Context, accountId int64) (bool, error) {
	for _, tr := range t.s.txs {
		if tr.AccountId == accountId && tr.Kind == models.TxWithdrawal && tr.Status == models.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertReferralEdge(_ context.Context, edge *models.ReferralEdge) error {
	for _, e := range t.s.edges {
		if e.ReferredId == edge.ReferredId {
			return models.ErrDuplicateReferral
		}
	}
	t.s.nextEdgeId++
	edge.Id = sql.NullInt64{Int64: t.s.nextEdgeId, Valid: true}
	cp := *edge
	t.s.edges[cp.Id.Int64] = &cp
	return nil
}

func (t *memTx) HasReferralEdgeFor(_ context.Context, referredId int64) (bool, error) {
	for _, e := range t.s.edges {
		if e.ReferredId == referredId {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ReferralCount(_ context.Context, referrerId int64) (int, error) {
	return t.s.referralCount(referrerId), nil
}

func (t *memTx) AddEdgeEarned(_ context.Context, referrerId, referredId int64, amount float64) error {
	for _, e := range t.s.edges {
		if e.ReferrerId == referrerId && e.ReferredId == referredId {
			e.Earned += amount
			return nil
		}
	}
	return nil
}

func (t *memTx) DeleteEdgesFor(_ context.Context, accountId int64) error {
	for id, e := range t.s.edges {
		if e.ReferrerId == accountId || e.ReferredId == accountId {
			delete(t.s.edges, id)
		}
	}
	return nil
}
