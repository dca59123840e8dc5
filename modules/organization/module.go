package organization

import (
	"embed"

	"github.com/greenweave/greenweave/modules/organization/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/organization/presentation/controllers"
	"github.com/greenweave/greenweave/modules/organization/services"
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
		services.NewOrganizationService(persistence.NewOrganizationRepository(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewOrganizationAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "organization"
}
