package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/common"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName string  `json:"first_name" validate:"required,max=80"`
	LastName  string  `json:"last_name" validate:"max=80"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	BirthDate string  `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=80"`
	LastName  *string `json:"last_name" validate:"omitempty,max=80"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Status    *string `json:"status" validate:"omitempty,oneof=ACTIVE SUSPENDED INACTIVE"`
}

type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=80"`
	LastName        *string `json:"last_name" validate:"omitempty,max=80"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// UserService manages students and coaches. role scopes every admin
// operation so that /admin/students never touches a coach.
type UserService interface {
	CreateUser(ctx context.Context, academyID uuid.UUID, role models.Role, req *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, academyID uuid.UUID, filters *models.UserFilters) ([]*models.User, error)
	UpdateUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	DeactivateUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID) error
	GetMe(ctx context.Context, academyID, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, academyID, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, academyID uuid.UUID, role models.Role, req *CreateUserRequest) (*models.User, error) {
	if role != models.RoleStudent && role != models.RoleCoach {
		return nil, invalidField("role", "role must be student or coach")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	birthDate, err := common.ParseOptionalDate(req.BirthDate, "birth_date")
	if err != nil {
		return nil, invalidField("birth_date", "%s", err.Error())
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		AcademyID:    academyID,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Status:       models.UserStatusActive,
		Phone:        req.Phone,
		BirthDate:    birthDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("email %s is already registered", strings.ToLower(user.Email))
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID) (*models.User, error) {
	return loadUserWithRole(ctx, s.userRepo, academyID, id, role)
}

func (s *userService) ListUsers(ctx context.Context, academyID uuid.UUID, filters *models.UserFilters) ([]*models.User, error) {
	if filters == nil {
		filters = &models.UserFilters{}
	}
	limit, offset, err := common.ValidatePaginationParams(filters.Limit, filters.Offset)
	if err != nil {
		return nil, invalidField("offset", "%s", err.Error())
	}
	filters.Limit, filters.Offset = limit, offset
	filters.Search = common.SanitizeSearchQuery(filters.Search)
	return s.userRepo.List(ctx, academyID, filters)
}

func (s *userService) UpdateUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := loadUserWithRole(ctx, s.userRepo, academyID, id, role)
	if err != nil {
		return nil, err
	}
	applyNames(user, req.FirstName, req.LastName, req.Phone)
	if req.BirthDate != nil {
		birthDate, err := common.ParseOptionalDate(*req.BirthDate, "birth_date")
		if err != nil {
			return nil, invalidField("birth_date", "%s", err.Error())
		}
		user.BirthDate = birthDate
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, notFound("user", err)
	}

	if req.Status != nil && models.UserStatus(*req.Status) != user.Status {
		user.Status = models.UserStatus(*req.Status)
		if err := s.userRepo.UpdateStatus(ctx, academyID, id, user.Status); err != nil {
			return nil, notFound("user", err)
		}
	}
	return user, nil
}

// DeactivateUser is the delete operation: the row stays and logins stop.
func (s *userService) DeactivateUser(ctx context.Context, academyID uuid.UUID, role models.Role, id uuid.UUID) error {
	if _, err := loadUserWithRole(ctx, s.userRepo, academyID, id, role); err != nil {
		return err
	}
	if err := s.userRepo.UpdateStatus(ctx, academyID, id, models.UserStatusInactive); err != nil {
		return notFound("user", err)
	}
	return nil
}

func (s *userService) GetMe(ctx context.Context, academyID, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, academyID, userID)
	if err != nil {
		return nil, notFound("user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, academyID, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetMe(ctx, academyID, userID)
	if err != nil {
		return nil, err
	}

	if req.NewPassword != "" {
		if !checkPassword(user.PasswordHash, req.CurrentPassword) {
			return nil, invalidField("current_password", "current_password is incorrect")
		}
		hash, err := HashPassword(req.NewPassword)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePassword(ctx, academyID, userID, hash); err != nil {
			return nil, fmt.Errorf("update password: %w", err)
		}
		user.PasswordHash = hash
	}

	applyNames(user, req.FirstName, req.LastName, req.Phone)
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, notFound("user", err)
	}
	return user, nil
}

func applyNames(user *models.User, firstName, lastName, phone *string) {
	if firstName != nil {
		user.FirstName = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		user.LastName = strings.TrimSpace(*lastName)
	}
	if phone != nil {
		user.Phone = common.StringPtr(*phone)
	}
}

// loadUserWithRole returns ErrNotFound when the user exists with another role.
func loadUserWithRole(ctx context.Context, repo repositories.UserRepository, academyID, id uuid.UUID, role models.Role) (*models.User, error) {
	user, err := repo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound(string(role), err)
	}
	if user.Role != role {
		return nil, fmt.Errorf("%s %w", role, ErrNotFound)
	}
	return user, nil
}

// loadStudent is loadUserWithRole for students, reported under field.
func loadStudent(ctx context.Context, repo repositories.UserRepository, academyID, id uuid.UUID, field string) (*models.User, error) {
	user, err := loadUserWithRole(ctx, repo, academyID, id, models.RoleStudent)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidField(field, "%s must be a student of this academy", field)
		}
		return nil, err
	}
	return user, nil
}
