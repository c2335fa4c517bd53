package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/application/permission"
	"github.com/jhoicas/Modulos-api/internal/application/reconcile"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

// Módulo core y permisos que protegen las rutas de administración de la organización.
const (
	ModuleSettings          = "settings"
	PermissionManageModules = "modules.manage"
	PermissionManageRoles   = "roles.manage"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Modules     *entitlement.Service
	Permissions *permission.Resolver
	Reconciler  *reconcile.Reconciler
	Logger      *logger.Logger
	JWTSecret   string
	AdminToken  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Conciliación (plataforma, token de administración)
	admin := api.Group("/admin/reconcile", AdminTokenMiddleware(deps.AdminToken))
	reconcileHandler := NewReconcileHandler(deps.Reconciler, deps.Logger)
	admin.Get("/audit", reconcileHandler.Audit)
	admin.Post("/fix", reconcileHandler.FixAll)
	admin.Post("/:orgId/fix", reconcileHandler.FixOrganization)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Módulos
	modules := protected.Group("/modules")
	moduleHandler := NewModuleHandler(deps.Modules, deps.Permissions, deps.Logger)
	modules.Get("/status", moduleHandler.Status)
	modules.Get("/:code/access", moduleHandler.Access)
	modules.Post("/:code/activate", RequirePermission(PermissionManageModules, deps.Permissions), moduleHandler.Activate)
	modules.Post("/:code/deactivate", RequirePermission(PermissionManageModules, deps.Permissions), moduleHandler.Deactivate)

	// Permisos
	permissionHandler := NewPermissionHandler(deps.Permissions)
	perms := protected.Group("/permissions")
	perms.Get("/check", permissionHandler.Check)
	perms.Post("/check", permissionHandler.CheckMany)

	// Roles
	roles := protected.Group("/roles",
		RequireModule(ModuleSettings, deps.Permissions),
		RequirePermission(PermissionManageRoles, deps.Permissions),
	)
	roles.Put("/:roleId/permissions/:code", permissionHandler.SetRolePermission)
}
