package core

import (
	"embed"

	"github.com/greenweave/greenweave/modules/core/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/core/presentation/controllers"
	"github.com/greenweave/greenweave/modules/core/services"
	"github.com/greenweave/greenweave/pkg/application"
)

//go:embed presentation/locales/*.json
var LocaleFiles embed.FS

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewTenantService(persistence.NewTenantRepository(), app.EventPublisher()),
		services.NewUserService(persistence.NewUserRepository(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewUsersAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
