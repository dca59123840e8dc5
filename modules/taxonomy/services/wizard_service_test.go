package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/wizard"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
)

func TestWizardService_CreateAndView(t *testing.T) {
	svc := services.NewWizardService(time.Minute)

	token := svc.Create()
	require.NotEmpty(t, token)

	var step wizard.Step
	ok := svc.View(token, func(s *wizard.Session) { step = s.Step() })
	require.True(t, ok)
	assert.Equal(t, wizard.StepSector, step)
}

func TestWizardService_UnknownTokenMisses(t *testing.T) {
	svc := services.NewWizardService(time.Minute)

	assert.False(t, svc.View("nope", func(*wizard.Session) {}))
	assert.False(t, svc.Mutate("nope", func(*wizard.Session) {}))
}

func TestWizardService_MutateSerializesConcurrentToggles(t *testing.T) {
	svc := services.NewWizardService(time.Minute)
	token := svc.Create()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Toggling twice leaves the selection unchanged.
			svc.Mutate(token, func(s *wizard.Session) { s.ToggleStandard("GRI") })
			svc.Mutate(token, func(s *wizard.Session) { s.ToggleStandard("GRI") })
		}()
	}
	wg.Wait()

	var standards []string
	require.True(t, svc.View(token, func(s *wizard.Session) { standards = s.Standards() }))
	assert.Empty(t, standards)
}

func TestWizardService_ViewAndMutateShareTheLock(t *testing.T) {
	svc := services.NewWizardService(time.Minute)
	token := svc.Create()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Mutate(token, func(s *wizard.Session) { s.ToggleStandard("GRI") })
		}()
		go func() {
			defer wg.Done()
			// Reads must see either the pre- or post-toggle slice, never a
			// partially written one.
			svc.View(token, func(s *wizard.Session) { _ = s.Standards() })
		}()
	}
	wg.Wait()
}

func TestWizardService_ResetClearsState(t *testing.T) {
	svc := services.NewWizardService(time.Minute)
	token := svc.Create()

	require.True(t, svc.Mutate(token, func(s *wizard.Session) {
		s.SelectSector("Energy")
		s.Advance()
	}))
	require.True(t, svc.Reset(token))

	var step wizard.Step
	var sector string
	require.True(t, svc.View(token, func(s *wizard.Session) {
		step = s.Step()
		sector = s.Sector()
	}))
	assert.Equal(t, wizard.StepSector, step)
	assert.Empty(t, sector)
}

func TestWizardService_ExpiredSessionIsGone(t *testing.T) {
	svc := services.NewWizardService(time.Nanosecond)
	token := svc.Create()

	time.Sleep(time.Millisecond)

	assert.False(t, svc.View(token, func(*wizard.Session) {}))
}

func TestWizardService_SweepDropsExpired(t *testing.T) {
	svc := services.NewWizardService(time.Nanosecond)
	svc.Create()
	svc.Create()

	time.Sleep(time.Millisecond)

	assert.Equal(t, 2, svc.Sweep())
}

func TestWizardService_CreateSweepsExpired(t *testing.T) {
	svc := services.NewWizardService(time.Nanosecond)
	svc.Create()
	svc.Create()

	time.Sleep(time.Millisecond)

	// Creating a session reaps the two expired ones, so only the fresh
	// session is left for the explicit sweep to find.
	svc.Create()

	time.Sleep(time.Millisecond)
	assert.Equal(t, 1, svc.Sweep())
}
