package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.json"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.ERCapacity)
	assert.Equal(t, 12.0, cfg.MaxHoursPerDay)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `{
		"ERName": "Test ED",
		"ERCapacity": 75,
		"ERTreatmentRooms": 30,
		"defaultArrivalFunction": "flat",
		"patientArrivalFunctions": {"flat": "1"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test ED", cfg.ERName)
	assert.Equal(t, 75, cfg.ERCapacity)
	assert.Equal(t, 30, cfg.ERTreatmentRooms)
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	path := writeConfig(t, `{"ERCapacity": 0, "ERTreatmentRooms": 10}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownDefaultArrivalFunction(t *testing.T) {
	path := writeConfig(t, `{
		"ERCapacity": 10,
		"ERTreatmentRooms": 10,
		"defaultArrivalFunction": "missing",
		"patientArrivalFunctions": {"flat": "1"}
	}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownArrivalFunctionWithNoMapConfigured(t *testing.T) {
	// defaultArrivalFunction overridden but patientArrivalFunctions left
	// at its default ({"flat": "1"}) -- "custom" resolves to nothing.
	path := writeConfig(t, `{
		"ERCapacity": 10,
		"ERTreatmentRooms": 10,
		"defaultArrivalFunction": "custom"
	}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsInvertedAgeRange(t *testing.T) {
	path := writeConfig(t, `{
		"ERCapacity": 10,
		"ERTreatmentRooms": 10,
		"patientMinAge": 50,
		"patientMaxAge": 10
	}`)
	_, err := Load(path)
	assert.Error(t, err)
}
