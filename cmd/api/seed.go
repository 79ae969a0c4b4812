package main

import (
	"context"
	"errors"

	"go-procurement-ws/internal/config"
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/pkg/logger"
)

// seedAccessControl creates default privileges, roles, and the admin user if they don't exist.
// Failures are logged; the server still starts.
func seedAccessControl(ctx context.Context, log *logger.Logger, cfg *config.Config,
	privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository) {
	log = log.WithComponent("seed")

	// 1. Privileges first, roles reference them
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.Warnw("seed privileges", "error", err)
		return
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.Warnw("seed roles", "error", err)
		return
	}

	// 2. Admin user with MASTER_ADMIN role
	_, err := userRepo.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Warnw("look up admin user", "error", err)
		return
	}

	masterRole, err := roleRepo.FindByCode(ctx, model.RoleMasterAdmin)
	if err != nil {
		log.Warnw("load MASTER_ADMIN role", "error", err)
		return
	}
	admin := &model.User{
		Email:       cfg.AdminEmail,
		FullName:    "Master Administrator",
		Designation: "System Administrator",
		RoleID:      &masterRole.ID,
		IsActive:    true,
		Privileges:  masterRole.Privileges,
	}
	admin.CreatedBy = service.SystemActor.ID
	admin.UpdatedBy = service.SystemActor.ID

	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Warnw("hash admin password", "error", err)
		return
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warnw("create admin user", "error", err)
		return
	}
	log.Infow("admin user created", "email", cfg.AdminEmail, "role", model.RoleMasterAdmin)
}
