package cfg

type Loader interface {
	Load() (*Config, error)
}

// Watcher is implemented by loaders that can push config changes at runtime.
type Watcher interface {
	RegisterConfigChangeCallback(callback func(*Config))
}
