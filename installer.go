package zenject

// Installer adds bindings to a container.
type Installer interface {
	InstallBindings(c *Container) error
}

// InstallerFunc adapts a function to Installer.
type InstallerFunc func(c *Container) error

func (f InstallerFunc) InstallBindings(c *Container) error {
	return f(c)
}

// NewModule groups installers under a name. Errors are wrapped in a
// ModuleError naming the module.
//
// Example:
//
//	var StorageModule = zenject.NewModule("storage",
//	    zenject.InstallerFunc(func(c *zenject.Container) error {
//	        zenject.Bind[Store](c).To(zenject.TypeOf[*DiskStore]()).AsSingle()
//	        return nil
//	    }),
//	)
//
//	var AppModule = zenject.NewModule("app",
//	    StorageModule,
//	    zenject.InstallerFunc(installHandlers),
//	)
func NewModule(name string, installers ...Installer) Installer {
	return InstallerFunc(func(c *Container) error {
		for _, installer := range installers {
			if installer == nil {
				continue
			}
			if err := installer.InstallBindings(c); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}
		// Surface the module's binding errors under its name.
		if err := c.FlushBindings(); err != nil {
			return ModuleError{Module: name, Cause: err}
		}
		return nil
	})
}

// Install runs installers in order and flushes their bindings.
func (c *Container) Install(installers ...Installer) error {
	defer c.lock()()

	wasInstalling := c.installing
	c.installing = true
	defer func() { c.installing = wasInstalling }()

	for _, installer := range installers {
		if installer == nil {
			return ErrInstallerNil
		}
		if err := installer.InstallBindings(c); err != nil {
			return err
		}
	}
	return c.FlushBindings()
}
