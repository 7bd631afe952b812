package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Full in-memory SessionRepository ─────────────────────────────────────────
//
// Transaction holds one mutex for the whole callback, which is exactly the
// serialization the real store gets from the advisory lock plus the row lock:
// two concurrent opens or closes cannot interleave their check-then-write.
// Methods called with a non-nil tx run under that mutex and must not retake it.

// txHandle is the placeholder handle passed to Transaction callbacks.
var txHandle = &gorm.DB{}

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*model.CashSession
	movements []model.CashMovement
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func (r *fakeSessionRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(txHandle)
}

func (r *fakeSessionRepo) LockRegister(_ context.Context, _ *gorm.DB, _ uuid.UUID) error {
	// Transaction already serializes whole callbacks.
	return nil
}

func (r *fakeSessionRepo) Create(_ context.Context, tx *gorm.DB, s *model.CashSession) error {
	if tx == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	// Mirrors the partial unique index on open sessions per register.
	for _, existing := range r.sessions {
		if existing.RegisterID == s.RegisterID && existing.Status == model.SessionOpen {
			return model.ErrRegisterAlreadyOpen
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := copySession(s)
	for _, m := range r.movements {
		if m.SessionID == id {
			cp.Movements = append(cp.Movements, m)
		}
	}
	return cp, nil
}

func (r *fakeSessionRepo) FindOpenByRegister(_ context.Context, tx *gorm.DB, registerID uuid.UUID) (*model.CashSession, error) {
	if tx == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	for _, s := range r.sessions {
		if s.RegisterID == registerID && s.Status == model.SessionOpen {
			return copySession(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) LockByID(_ context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	if tx == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copySession(s), nil
}

func (r *fakeSessionRepo) Update(_ context.Context, tx *gorm.DB, s *model.CashSession) error {
	if tx == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *fakeSessionRepo) CreateMovement(_ context.Context, tx *gorm.DB, m *model.CashMovement) error {
	if tx == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeSessionRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.CashMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeSessionRepo) SumMovements(_ context.Context, sessionID uuid.UUID) (map[model.MovementType]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[model.MovementType]decimal.Decimal)
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			sums[m.Type] = sums[m.Type].Add(m.Amount)
		}
	}
	return sums, nil
}

func (r *fakeSessionRepo) List(_ context.Context, businessID uuid.UUID, f dto.HistoryFilter) ([]model.CashSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.CashSession
	for _, s := range r.sessions {
		if s.BusinessID != businessID || s.Status != model.SessionClosed {
			continue
		}
		if f.RegisterID != "" && s.RegisterID.String() != f.RegisterID {
			continue
		}
		day := s.ClosedAt.UTC().Format("2006-01-02")
		if f.From != "" && day < f.From {
			continue
		}
		if f.To != "" && day > f.To {
			continue
		}
		all = append(all, *copySession(s))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ClosedAt.After(*all[j].ClosedAt) })

	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeSessionRepo) ClosedSince(_ context.Context, since time.Time) ([]model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.CashSession
	for _, s := range r.sessions {
		if s.Status == model.SessionClosed && s.ClosedAt != nil && !s.ClosedAt.Before(since) {
			result = append(result, *copySession(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClosedAt.Before(*result[j].ClosedAt) })
	return result, nil
}

func (r *fakeSessionRepo) RegistersWithMultipleOpen(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[uuid.UUID]int)
	for _, s := range r.sessions {
		if s.Status == model.SessionOpen {
			counts[s.RegisterID]++
		}
	}
	var ids []uuid.UUID
	for id, n := range counts {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

// seed drops a session straight into the store, bypassing Open.
func (r *fakeSessionRepo) seed(s *model.CashSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = copySession(s)
}

func copySession(s *model.CashSession) *model.CashSession {
	cp := *s
	cp.ClosedByID = clonePtr(s.ClosedByID)
	cp.ClosedAt = clonePtr(s.ClosedAt)
	cp.ClosingFloat = clonePtr(s.ClosingFloat)
	cp.ExpectedCash = clonePtr(s.ExpectedCash)
	cp.ActualCash = clonePtr(s.ActualCash)
	cp.CashDifference = clonePtr(s.CashDifference)
	cp.Notes = clonePtr(s.Notes)
	cp.Movements = nil
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ── In-memory RegisterRepository ─────────────────────────────────────────────

type fakeRegisterRepo struct {
	mu        sync.Mutex
	registers map[uuid.UUID]*model.Register
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{registers: make(map[uuid.UUID]*model.Register)}
}

func (r *fakeRegisterRepo) Create(_ context.Context, reg *model.Register) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	cp := *reg
	r.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*model.Register, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registers[id]
	if !ok || reg.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeRegisterRepo) List(_ context.Context, businessID uuid.UUID) ([]model.Register, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var regs []model.Register
	for _, reg := range r.registers {
		if reg.BusinessID == businessID {
			regs = append(regs, *reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt) })
	return regs, nil
}

func (r *fakeRegisterRepo) Update(_ context.Context, reg *model.Register) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *reg
	r.registers[reg.ID] = &cp
	return nil
}

var _ repository.RegisterRepository = (*fakeRegisterRepo)(nil)

// ── Test environment ─────────────────────────────────────────────────────────

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type env struct {
	sessions  *fakeSessionRepo
	registers *fakeRegisterRepo
	clock     clockwork.FakeClock

	sessionSvc  service.SessionService
	movementSvc service.MovementService

	businessID uuid.UUID
	operatorID uuid.UUID
	register   *model.Register
}

func newEnv() *env {
	sessions := newFakeSessionRepo()
	registers := newFakeRegisterRepo()
	clock := clockwork.NewFakeClockAt(testEpoch)
	businessID := uuid.New()

	reg := &model.Register{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       "Till 1",
		Active:     true,
		CreatedAt:  testEpoch,
	}
	_ = registers.Create(context.Background(), reg)

	return &env{
		sessions:    sessions,
		registers:   registers,
		clock:       clock,
		sessionSvc:  service.NewSessionService(sessions, registers, nil, clock),
		movementSvc: service.NewMovementService(sessions, nil, clock),
		businessID:  businessID,
		operatorID:  uuid.New(),
		register:    reg,
	}
}

// openSession opens a session with the given float and returns its id.
func (e *env) openSession(ctx context.Context, openingFloat decimal.Decimal) (uuid.UUID, error) {
	resp, err := e.sessionSvc.Open(ctx, e.businessID, e.operatorID, dto.OpenSessionRequest{
		RegisterID:   e.register.ID.String(),
		OpeningFloat: openingFloat,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(resp.ID)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
