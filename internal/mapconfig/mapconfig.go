// Package mapconfig loads the pattern-map configuration consumed by
// pkg/pdtypes.Config.Maps from a YAML file via Viper. The map
// configuration's file format and loader live upstream of the core
// engine; this package is that contract's one concrete realization for
// a standalone module.
package mapconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// rawMap mirrors the on-disk shape of a single map entry.
type rawMap struct {
	Pattern       string          `mapstructure:"pattern"`
	Table         string          `mapstructure:"table"`
	PatternFields []rawPatternCol `mapstructure:"pattern_fields"`
	ValueField    string          `mapstructure:"value_field"`
	ValueTypes    []string        `mapstructure:"value_types"`
	UsernameField string          `mapstructure:"username_field"`
	ExpireField   string          `mapstructure:"expire_field"`
}

type rawPatternCol struct {
	Column string `mapstructure:"column"`
	Type   string `mapstructure:"type"`
}

// rawRoot mirrors the top-level config.yaml shape: backend selection plus
// the map list.
type rawRoot struct {
	Backend string   `mapstructure:"backend"`
	DataDir string   `mapstructure:"data_dir"`
	Maps    []rawMap `mapstructure:"maps"`
}

// Load reads dir/config.yaml via Viper and decodes it into a
// pdtypes.Config. A missing file is not an error — Viper returns
// zero-value defaults — but the resulting Config still fails Validate
// since it will have no maps.
func Load(configDir string) (pdtypes.Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetDefault("backend", pdtypes.BackendSQLite)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return pdtypes.Config{Backend: v.GetString("backend")}, nil
		}
		return pdtypes.Config{}, fmt.Errorf("read config: %w", err)
	}

	var root rawRoot
	if err := v.Unmarshal(&root); err != nil {
		return pdtypes.Config{}, fmt.Errorf("decode config: %w", err)
	}

	maps, err := decodeMaps(root.Maps)
	if err != nil {
		return pdtypes.Config{}, err
	}

	return pdtypes.Config{
		Backend: root.Backend,
		DataDir: root.DataDir,
		Maps:    maps,
	}, nil
}

func decodeMaps(raw []rawMap) ([]pdtypes.Map, error) {
	maps := make([]pdtypes.Map, 0, len(raw))
	for i, rm := range raw {
		m, err := decodeMap(rm)
		if err != nil {
			return nil, fmt.Errorf("maps[%d] (%s): %w", i, rm.Pattern, err)
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func decodeMap(rm rawMap) (pdtypes.Map, error) {
	fields := make([]pdtypes.PatternField, 0, len(rm.PatternFields))
	for _, pc := range rm.PatternFields {
		kind, err := pdtypes.ParseValueKind(pc.Type)
		if err != nil {
			return pdtypes.Map{}, fmt.Errorf("pattern field %q: %w", pc.Column, err)
		}
		fields = append(fields, pdtypes.PatternField{Column: pc.Column, Kind: kind})
	}

	// value_field is a comma-separated list; position 0 is the primary
	// value column used by Set/AtomicInc.
	var valueCols []string
	for _, c := range strings.Split(rm.ValueField, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			valueCols = append(valueCols, c)
		}
	}

	valueKinds := make([]pdtypes.ValueKind, 0, len(rm.ValueTypes))
	for _, t := range rm.ValueTypes {
		kind, err := pdtypes.ParseValueKind(t)
		if err != nil {
			return pdtypes.Map{}, fmt.Errorf("value type %q: %w", t, err)
		}
		valueKinds = append(valueKinds, kind)
	}

	m := pdtypes.Map{
		Pattern:       rm.Pattern,
		Table:         rm.Table,
		PatternFields: fields,
		ValueColumns:  valueCols,
		ValueKinds:    valueKinds,
		UsernameField: rm.UsernameField,
		ExpireField:   rm.ExpireField,
	}
	if err := m.Validate(); err != nil {
		return pdtypes.Map{}, err
	}
	return m, nil
}
