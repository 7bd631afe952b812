package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterService administers the drawers sessions run on. Registers are
// never deleted; deactivation retires them while history stays queryable.
// Deactivating a register does not close its open session — closing is
// always an explicit operator action.
type RegisterService interface {
	Create(ctx context.Context, businessID uuid.UUID, req dto.CreateRegisterRequest) (*dto.RegisterResponse, error)
	List(ctx context.Context, businessID uuid.UUID) (*dto.RegisterListResponse, error)
	Get(ctx context.Context, businessID, id uuid.UUID) (*dto.RegisterResponse, error)
	Rename(ctx context.Context, businessID, id uuid.UUID, req dto.RenameRegisterRequest) (*dto.RegisterResponse, error)
	Deactivate(ctx context.Context, businessID, id uuid.UUID) (*dto.RegisterResponse, error)
	Reactivate(ctx context.Context, businessID, id uuid.UUID) (*dto.RegisterResponse, error)
}

type registerService struct {
	repo repository.RegisterRepository
}

func NewRegisterService(repo repository.RegisterRepository) RegisterService {
	return &registerService{repo: repo}
}

func (s *registerService) Create(ctx context.Context, businessID uuid.UUID, req dto.CreateRegisterRequest) (*dto.RegisterResponse, error) {
	reg := &model.Register{
		BusinessID: businessID,
		Name:       strings.TrimSpace(req.Name),
		Active:     true,
	}
	if req.LocationID != nil {
		locID, err := uuid.Parse(*req.LocationID)
		if err == nil {
			reg.LocationID = &locID
		}
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return registerToResponse(reg), nil
}

func (s *registerService) List(ctx context.Context, businessID uuid.UUID) (*dto.RegisterListResponse, error) {
	regs, err := s.repo.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RegisterResponse, 0, len(regs))
	for i := range regs {
		items = append(items, *registerToResponse(&regs[i]))
	}
	return &dto.RegisterListResponse{Data: items, Total: int64(len(items))}, nil
}

func (s *registerService) Get(ctx context.Context, businessID, id uuid.UUID) (*dto.RegisterResponse, error) {
	reg, err := s.find(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return registerToResponse(reg), nil
}

func (s *registerService) Rename(ctx context.Context, businessID, id uuid.UUID, req dto.RenameRegisterRequest) (*dto.RegisterResponse, error) {
	reg, err := s.find(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	reg.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}
	return registerToResponse(reg), nil
}

func (s *registerService) Deactivate(ctx context.Context, businessID, id uuid.UUID) (*dto.RegisterResponse, error) {
	return s.setActive(ctx, businessID, id, false)
}

func (s *registerService) Reactivate(ctx context.Context, businessID, id uuid.UUID) (*dto.RegisterResponse, error) {
	return s.setActive(ctx, businessID, id, true)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *registerService) find(ctx context.Context, businessID, id uuid.UUID) (*model.Register, error) {
	reg, err := s.repo.FindByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRegisterNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (s *registerService) setActive(ctx context.Context, businessID, id uuid.UUID, active bool) (*dto.RegisterResponse, error) {
	reg, err := s.find(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	reg.Active = active
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}
	return registerToResponse(reg), nil
}

func registerToResponse(r *model.Register) *dto.RegisterResponse {
	resp := &dto.RegisterResponse{
		ID:        r.ID.String(),
		Name:      r.Name,
		Active:    r.Active,
		CreatedAt: r.CreatedAt.Format(timeLayout),
	}
	if r.LocationID != nil {
		v := r.LocationID.String()
		resp.LocationID = &v
	}
	return resp
}
