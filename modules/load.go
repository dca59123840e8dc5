package modules

import (
	"github.com/greenweave/greenweave/modules/core"
	"github.com/greenweave/greenweave/modules/organization"
	"github.com/greenweave/greenweave/modules/taxonomy"
	"github.com/greenweave/greenweave/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	taxonomy.NewModule(),
	organization.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
