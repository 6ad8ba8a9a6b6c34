package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oosim/internal/config"
)

func TestValidateFlagsRequiresConfig(t *testing.T) {
	flagConfig = ""
	flagCores = 0
	assert.Error(t, validateFlags(nil, nil))
}

func TestValidateFlagsRejectsNegativeCores(t *testing.T) {
	flagConfig = "core.yaml"
	flagCores = -1
	assert.Error(t, validateFlags(nil, nil))
	flagCores = 0
}

func TestExpandOrTrimCores(t *testing.T) {
	base := []config.CoreConfig{{Name: "a"}, {Name: "b"}}

	assert.Equal(t, base, expandOrTrimCores(base, 2))

	grown := expandOrTrimCores(base, 5)
	assert.Len(t, grown, 5)
	assert.Equal(t, "a", grown[0].Name)
	assert.Equal(t, "b", grown[1].Name)
	assert.Equal(t, "a", grown[2].Name)

	assert.Empty(t, expandOrTrimCores(nil, 3))
}
