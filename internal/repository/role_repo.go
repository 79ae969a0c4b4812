package repository

import (
	"context"
	"errors"

	"go-procurement-ws/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	Create(ctx context.Context, role *model.Role) error
	ReplacePrivileges(ctx context.Context, role *model.Role, privileges []model.Privilege) error
	// SeedDefaults creates missing default roles and grants their default privileges.
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := conn(ctx, r.db).Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := conn(ctx, r.db).Preload("Privileges").First(&role, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := conn(ctx, r.db).Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func (r *roleRepo) Create(ctx context.Context, role *model.Role) error {
	return translateError(conn(ctx, r.db).Create(role).Error)
}

func (r *roleRepo) ReplacePrivileges(ctx context.Context, role *model.Role, privileges []model.Privilege) error {
	return conn(ctx, r.db).Model(role).Association("Privileges").Replace(privileges)
}

func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	db := conn(ctx, r.db)

	var all []model.Privilege
	if err := db.Find(&all).Error; err != nil {
		return err
	}
	byCode := make(map[string]model.Privilege, len(all))
	for _, p := range all {
		byCode[p.Code] = p
	}

	for _, defaultRole := range model.DefaultRoles {
		var role model.Role
		err := db.Where("code = ?", defaultRole.Code).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role = defaultRole
		if err := db.Create(&role).Error; err != nil {
			return err
		}

		grants := all
		if role.Code != model.RoleMasterAdmin {
			grants = nil
			for _, code := range model.DefaultRolePrivileges[role.Code] {
				if p, ok := byCode[code]; ok {
					grants = append(grants, p)
				}
			}
		}
		if len(grants) > 0 {
			if err := db.Model(&role).Association("Privileges").Replace(grants); err != nil {
				return err
			}
		}
	}
	return nil
}
