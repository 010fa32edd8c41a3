package logs

import (
	"testing"

	logging "github.com/ipfs/go-log/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetModuleLevels(t *testing.T) {
	lg := logging.Logger("logs-test")

	require.NoError(t, SetModuleLevels([]string{"logs-test:debug"}))
	assert.True(t, lg.Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetModuleLevels([]string{"logs-test:error"}))
	assert.False(t, lg.Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestSetModuleLevels_Invalid(t *testing.T) {
	_ = logging.Logger("logs-test")

	assert.Error(t, SetModuleLevels([]string{"logs-test"}))
	assert.Error(t, SetModuleLevels([]string{":debug"}))
	assert.Error(t, SetModuleLevels([]string{"logs-test:verbose"}))
}
