package pdtypes

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Config selects a SQL backend and its data directory, plus the maps that
// define the dictionary's schema.
type Config struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
	Maps    []Map  `yaml:"-"`
}

// Validate checks that Backend names a supported driver, that at least one
// map is declared, and that every map passes Map.Validate.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if len(c.Maps) == 0 {
		return ErrNoMaps
	}
	for i := range c.Maps {
		if err := c.Maps[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
