package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"event_management/internal/domain"
	"event_management/internal/repository"
	"event_management/internal/validator"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req *validator.UpdateProfileRequest) (*domain.User, error)
	ChangeRole(ctx context.Context, adminID, userID uuid.UUID, req *validator.ChangeRoleRequest) (*domain.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	audit     AuditService
	validator *validator.Validator
	log       logger.Logger
}

func NewUserService(userRepo repository.UserRepository, audit AuditService, v *validator.Validator, log logger.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		audit:     audit,
		validator: v,
		log:       log,
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateMe edits contact details only; the role is never taken from a
// profile edit.
func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req *validator.UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		changed = append(changed, "email")
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		changed = append(changed, "first_name")
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		changed = append(changed, "last_name")
	}
	if req.Phone != nil {
		user.Phone = req.Phone
		changed = append(changed, "phone")
	}

	if len(changed) > 0 {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		s.audit.Record(ctx, &userID, domain.AuditActionUpdate, domain.EntityUser, user.ID.String(),
			"profile updated: "+strings.Join(changed, ", "))
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, adminID, userID uuid.UUID, req *validator.ChangeRoleRequest) (*domain.User, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin {
		return nil, apperrors.ErrAdminOnly
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == req.Role {
		user.PasswordHash = ""
		return user, nil
	}

	previous := user.Role
	if err := s.userRepo.UpdateRole(ctx, userID, req.Role); err != nil {
		return nil, err
	}
	user.Role = req.Role

	s.audit.Record(ctx, &adminID, domain.AuditActionUpdate, domain.EntityUser, user.ID.String(),
		fmt.Sprintf("role changed from %s to %s", previous, req.Role))
	s.log.Info("User role changed", "user_id", userID, "admin_id", adminID, "role", req.Role)

	user.PasswordHash = ""
	return user, nil
}
