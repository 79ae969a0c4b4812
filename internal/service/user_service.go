package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/apperror"

	"github.com/google/uuid"
)

var ErrEmailExists = errors.New("email already exists")

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error
	UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	Department  string  `json:"department"`
	Designation string  `json:"designation"`
	RoleID      uint    `json:"role_id" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

// checkEmailAndRole adds field errors for a taken email or unknown role.
func (s *userService) checkEmailAndRole(ctx context.Context, errs *fieldErrors, email string, roleID uint, selfID uuid.UUID) (*model.Role, error) {
	if email != "" && !errs.has("email") {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			errs.add("email", "has already been taken")
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NewInternal(err)
		}
	}

	if roleID == 0 {
		return nil, nil
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewInternal(err)
		}
		errs.add("role_id", "selected role does not exist")
		return nil, nil
	}
	return role, nil
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	errs := validateInput(req)
	role, err := s.checkEmailAndRole(ctx, &errs, req.Email, req.RoleID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		Department:  req.Department,
		Designation: req.Designation,
		RoleID:      &role.ID,
		IsActive:    true,
		// Privileges start as the role's defaults
		Privileges: role.Privileges,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflict("email already exists").WithCause(ErrEmailExists)
		}
		return nil, storageError("user", nil, err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", userID, ErrUserNotFound, err)
	}

	req.Email = strings.TrimSpace(req.Email)
	errs := validateInput(req)
	role, err := s.checkEmailAndRole(ctx, &errs, req.Email, req.RoleID, userID)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.Department = req.Department
	user.Designation = req.Designation
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.ID

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, apperror.NewInternal(err)
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storageError("user", userID, err)
	}
	// Changing role resets privileges to the role's defaults
	if err := s.userRepo.UpdatePrivileges(ctx, userID, role.Privileges); err != nil {
		return nil, storageError("user", userID, err)
	}
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error {
	if actor.ID == userID.String() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "You cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, userID, actor.ID); err != nil {
		return notFound("user", userID, ErrUserNotFound, err)
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", userID, ErrUserNotFound, err)
	}

	privileges, err := s.privilegeRepo.FindByCodes(ctx, privilegeCodes)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if len(privileges) != len(privilegeCodes) {
		known := make(map[string]bool, len(privileges))
		for _, p := range privileges {
			known[p.Code] = true
		}
		var errs fieldErrors
		for i, code := range privilegeCodes {
			if !known[code] {
				errs.add(fmt.Sprintf("privileges[%d]", i), "unknown privilege "+code)
			}
		}
		if err := errs.err(); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.UpdatePrivileges(ctx, userID, privileges); err != nil {
		return nil, storageError("user", userID, err)
	}

	user.UpdatedBy = actor.ID
	user.Privileges = nil
	user.Role = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storageError("user", userID, err)
	}
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("user", id, ErrUserNotFound, err)
	}
	response := user.ToResponse()
	return &response, nil
}
