package manifest

// Config is the top-level durable.toml.
type Config struct {
	Endpoint Endpoint `toml:"endpoint"`
	Runtime  Runtime  `toml:"runtime"`
	Catalog  Catalog  `toml:"catalog"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	_ = c.Validate()
	return c
}

// Validate applies defaults, normalizes values and rejects bad ones.
func (c *Config) Validate() error {
	if err := c.Endpoint.validate(); err != nil {
		return err
	}
	if err := c.Runtime.validate(); err != nil {
		return err
	}
	return c.Catalog.validate()
}
