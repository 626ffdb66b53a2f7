package zenject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
	"github.com/aerialflame7125/zenject/internal/testutil"
)

func installDatabase(c *zenject.Container) error {
	zenject.Bind[*testutil.Database](c).AsSingle()
	return nil
}

func TestInstall(t *testing.T) {
	t.Run("runs installers in order", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		var order []string
		err := c.Install(
			zenject.InstallerFunc(func(c *zenject.Container) error {
				order = append(order, "logging")
				assert.True(t, c.IsInstalling())
				zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.ConsoleLogger]()).AsSingle()
				return nil
			}),
			zenject.InstallerFunc(func(c *zenject.Container) error {
				order = append(order, "storage")
				return installDatabase(c)
			}),
		)
		require.NoError(t, err)

		assert.Equal(t, []string{"logging", "storage"}, order)
		assert.False(t, c.IsInstalling())
		testutil.AssertResolvable[*testutil.Database](t, c)
		testutil.AssertResolvable[testutil.Logger](t, c)
	})

	t.Run("stops at the first error", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		ran := false
		err := c.Install(
			zenject.InstallerFunc(func(*zenject.Container) error { return testutil.ErrTest }),
			zenject.InstallerFunc(func(*zenject.Container) error { ran = true; return nil }),
		)
		assert.ErrorIs(t, err, testutil.ErrTest)
		assert.False(t, ran)
	})

	t.Run("nil installer", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		assert.ErrorIs(t, c.Install(nil), zenject.ErrInstallerNil)
	})

	t.Run("binding errors surface", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		err := c.Install(zenject.InstallerFunc(func(c *zenject.Container) error {
			zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.Database]())
			return nil
		}))
		assert.ErrorIs(t, err, zenject.ErrNotDerived)
	})
}

func TestNewModule(t *testing.T) {
	t.Run("wraps errors with the module name", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		module := zenject.NewModule("storage", zenject.InstallerFunc(func(*zenject.Container) error {
			return testutil.ErrTest
		}))

		err := c.Install(module)
		var modErr zenject.ModuleError
		require.ErrorAs(t, err, &modErr)
		assert.Equal(t, "storage", modErr.Module)
		assert.ErrorIs(t, err, testutil.ErrTest)
		assert.Contains(t, err.Error(), `module "storage"`)
	})

	t.Run("nested modules", func(t *testing.T) {
		t.Parallel()

		storage := zenject.NewModule("storage", zenject.InstallerFunc(installDatabase))
		app := zenject.NewModule("app",
			storage,
			nil,
			zenject.InstallerFunc(func(c *zenject.Container) error {
				zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.ConsoleLogger]()).AsSingle()
				zenject.Bind[*testutil.UserService](c).AsSingle()
				return nil
			}),
		)

		c := testutil.NewContainer(t)
		require.NoError(t, c.Install(app))
		svc := testutil.AssertResolvable[*testutil.UserService](t, c)
		assert.Same(t, testutil.AssertResolvable[*testutil.Database](t, c), svc.DB)
	})

	t.Run("nested errors name every module", func(t *testing.T) {
		t.Parallel()

		inner := zenject.NewModule("inner", zenject.InstallerFunc(func(*zenject.Container) error {
			return testutil.ErrTest
		}))
		outer := zenject.NewModule("outer", inner)

		err := testutil.NewContainer(t).Install(outer)
		assert.ErrorIs(t, err, testutil.ErrTest)
		assert.Equal(t, `module "outer": module "inner": test error`, err.Error())
	})

	t.Run("binding errors are attributed to the module", func(t *testing.T) {
		t.Parallel()

		module := zenject.NewModule("broken", zenject.InstallerFunc(func(c *zenject.Container) error {
			zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.Database]())
			return nil
		}))

		err := testutil.NewContainer(t).Install(module)
		var modErr zenject.ModuleError
		require.ErrorAs(t, err, &modErr)
		assert.Equal(t, "broken", modErr.Module)
		assert.ErrorIs(t, err, zenject.ErrNotDerived)
	})
}
