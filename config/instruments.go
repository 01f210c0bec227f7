package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/logger"
)

// defaultInstruments is used whenever the instruments file cannot be used.
var defaultInstruments = []models.Instrument{
	{Name: "Shanghai", Code: "gds_AUTD"},
	{Name: "New York", Code: "hf_GC"},
	{Name: "London", Code: "hf_XAU"},
	{Name: "Shanghai Silver", Code: "gds_AGTD"},
	{Name: "New York Silver", Code: "hf_SI"},
	{Name: "London Silver", Code: "hf_XAG"},
}

// DefaultInstruments returns a copy of the built-in instrument list.
func DefaultInstruments() []models.Instrument {
	out := make([]models.Instrument, len(defaultInstruments))
	copy(out, defaultInstruments)
	return out
}

// LoadInstruments reads the name -> code mapping from path.
//
// The file holds a top-level "instruments" list, in any format viper reads
// (JSON, YAML, TOML):
//
//	{"instruments": [{"name": "Shanghai", "code": "gds_AUTD"}]}
//
// Any failure (missing file, parse error, invalid entries) is logged and
// the built-in defaults are returned instead.
func LoadInstruments(path string) []models.Instrument {
	log := logger.With("config")

	list, err := readInstruments(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("instrument config load failed, using defaults")
		return DefaultInstruments()
	}
	log.Info().Str("path", path).Int("instruments", len(list)).Msg("instrument config loaded")
	return list
}

func readInstruments(path string) ([]models.Instrument, error) {
	if path == "" {
		return nil, errors.New("no instruments file configured")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var list []models.Instrument
	if err := v.UnmarshalKey("instruments", &list); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validateInstruments(list); err != nil {
		return nil, err
	}
	return list, nil
}

func validateInstruments(list []models.Instrument) error {
	if len(list) == 0 {
		return errors.New("instruments list is empty")
	}
	seen := make(map[string]struct{}, len(list))
	for i, in := range list {
		name := strings.TrimSpace(in.Name)
		if name == "" || strings.TrimSpace(string(in.Code)) == "" {
			return fmt.Errorf("instrument %d: name and code are required", i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("instrument %d: duplicate name %q", i, name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
