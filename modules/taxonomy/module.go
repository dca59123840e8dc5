package taxonomy

import (
	"embed"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/controllers"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/configuration"
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

	conf := configuration.Use()
	repo := persistence.NewTaxonomyRepository()
	guard := dedup.NewGuardWithThreshold(repo, conf.Taxonomy.SimilarityThreshold)
	taxonomyService := services.NewTaxonomyService(repo, guard, app.EventPublisher())

	app.RegisterServices(
		taxonomyService,
		services.NewWizardService(conf.WizardSessionTTL),
	)
	app.RegisterControllers(
		controllers.NewTaxonomyAPIController(app),
		controllers.NewWizardAPIController(app),
	)
	app.Spotlight().Register(&entriesDataSource{taxonomy: taxonomyService})
	return nil
}

func (m *Module) Name() string {
	return "taxonomy"
}
