package repository

import (
	"context"
	"errors"

	"cineteca/internal/dto"
	"cineteca/internal/entity"
	"cineteca/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, user *entity.User) error
	// SetRole replaces the user's whole role set with the single given role.
	SetRole(ctx context.Context, user *entity.User, role *entity.Role) error
	FindRole(ctx context.Context, name string) (*entity.Role, error)
	ListRoles(ctx context.Context) ([]entity.Role, error)
	Search(ctx context.Context, req dto.SearchUserRequest) (*SearchResult[entity.User], error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	// Usernames and emails are stored lower-cased; every lookup applies the
	// same normalization, so matching is case-insensitive end to end.
	user.Username = utils.Normalize(user.Username)
	user.Email = utils.Normalize(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", utils.Normalize(username))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", utils.Normalize(email))
}

func (r *userRepository) findOne(ctx context.Context, condition string, value any) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Roles.Claims").
		Preload("Claims").
		Where(condition, value).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	user.Username = utils.Normalize(user.Username)
	user.Email = utils.Normalize(user.Email)
	result := r.db.WithContext(ctx).
		Omit("Roles", "Claims", "ConfirmationCode").
		Save(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, user *entity.User) error {
	result := r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(&entity.User{ID: user.ID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, user *entity.User, role *entity.Role) error {
	// Remove-all-then-add-one as one logical step. Join rows are written
	// directly so the role record itself is never touched.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", user.ID, role.ID).Error
	})
	if err != nil {
		return err
	}
	user.Roles = []entity.Role{*role}
	return nil
}

func (r *userRepository) FindRole(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	err := r.db.WithContext(ctx).
		Preload("Claims").
		Where("name = ?", utils.Normalize(name)).
		First(&role).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) ListRoles(ctx context.Context) ([]entity.Role, error) {
	var roles []entity.Role
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

var userSortColumns = map[string]string{
	"username":  "users.username",
	"firstname": "users.first_name",
	"lastname":  "users.last_name",
}

func (r *userRepository) Search(ctx context.Context, req dto.SearchUserRequest) (*SearchResult[entity.User], error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entity.User{}).Where("users.enabled = ?", enabled)
		if req.Q != "" {
			pattern := "%" + req.Q + "%"
			query = query.Where(
				"users.username ILIKE ? OR users.first_name ILIKE ? OR users.last_name ILIKE ?",
				pattern, pattern, pattern,
			)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	var users []entity.User
	query := orderBy(filtered(), userSortColumns, req.SortColumn, req.SortOrder, "users.id")
	err := query.
		Preload("Roles").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return &SearchResult[entity.User]{Items: users, Page: page, PageSize: pageSize, TotalCount: total}, nil
}
