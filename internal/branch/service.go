package branch

import (
	"log/slog"
	"strings"

	errors "github.com/jeycentre/care-center-backend/internal"
	branchDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/branch"
)

type RepositoryAPI interface {
	GetAll() ([]*branchDatamodel.Branch, error)
	GetByID(id int64) (*branchDatamodel.Branch, error)
	GetByName(name string) (*branchDatamodel.Branch, error)
	Create(branch *branchDatamodel.Branch) error
	Update(branch *branchDatamodel.Branch) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllBranches() ([]BranchResponse, error) {
	dataBranches, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get branches from repository", "error", err)
		return nil, errors.NewInternalError("failed to get branches", err)
	}

	responses := make([]BranchResponse, 0, len(dataBranches))
	for _, dataBranch := range dataBranches {
		responses = append(responses, FromDataModel(dataBranch).ToResponse())
	}

	s.logger.Info("retrieved branches", "count", len(responses))
	return responses, nil
}

func (s *Service) GetByID(id int64) (*Branch, error) {
	dataBranch, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get branch", "branch_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get branch", err)
	}
	if dataBranch == nil {
		return nil, errors.ErrBranchNotFound
	}
	return FromDataModel(dataBranch), nil
}

func (s *Service) Create(dto CreateBranchDTO) (*Branch, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(dto.Name)
	if err != nil {
		s.logger.Error("failed to check branch name", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create branch", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("branch name already exists", errors.ErrCodeDuplicateBranch)
	}

	branch := NewBranch(dto.Name, dto.Address, dto.ContactPhone)
	dataBranch := ToDataModel(branch)
	if err := s.repo.Create(dataBranch); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewConflictError("branch name already exists", errors.ErrCodeDuplicateBranch)
		}
		s.logger.Error("failed to create branch", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create branch", err)
	}

	s.logger.Info("branch created", "branch_id", dataBranch.ID, "name", dataBranch.Name)
	return FromDataModel(dataBranch), nil
}

func (s *Service) Update(id int64, dto UpdateBranchDTO) (*Branch, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dataBranch, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get branch for update", "branch_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update branch", err)
	}
	if dataBranch == nil {
		return nil, errors.ErrBranchNotFound
	}

	if dto.Name != nil && *dto.Name != dataBranch.Name {
		existing, err := s.repo.GetByName(*dto.Name)
		if err != nil {
			return nil, errors.NewInternalError("failed to update branch", err)
		}
		if existing != nil && existing.ID != id {
			return nil, errors.NewConflictError("branch name already exists", errors.ErrCodeDuplicateBranch)
		}
		dataBranch.Name = *dto.Name
	}
	if dto.Address != nil {
		dataBranch.Address = *dto.Address
	}
	if dto.ContactPhone != nil {
		dataBranch.ContactPhone = *dto.ContactPhone
	}

	if err := s.repo.Update(dataBranch); err != nil {
		s.logger.Error("failed to update branch", "branch_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update branch", err)
	}

	s.logger.Info("branch updated", "branch_id", id)
	return FromDataModel(dataBranch), nil
}

func (s *Service) Delete(id int64) error {
	dataBranch, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get branch for delete", "branch_id", id, "error", err)
		return errors.NewInternalError("failed to delete branch", err)
	}
	if dataBranch == nil {
		return errors.ErrBranchNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete branch", "branch_id", id, "error", err)
		return errors.NewInternalError("failed to delete branch", err)
	}

	s.logger.Info("branch deleted", "branch_id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
