package persistence_test

import (
	"testing"

	"github.com/greenweave/greenweave/modules"
	"github.com/greenweave/greenweave/pkg/itf"
)

func itfEnv(t *testing.T) *itf.TestEnvironment {
	t.Helper()
	return itf.NewTestContext().WithModules(modules.BuiltInModules...).Build(t)
}
