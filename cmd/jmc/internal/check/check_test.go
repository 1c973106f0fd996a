package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/jsonmodel/internal/logging"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("type: object\nproperties:\n  a: {type: string}\n"), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("type: object\nproperties:\n  a: {type: string, minLen: 1}\n"), 0o644))

	assert.NoError(t, (&Cmd{Schema: good}).Run(logging.NewNop()))
	assert.NoError(t, (&Cmd{Schema: bad}).Run(logging.NewNop()))
	assert.Error(t, (&Cmd{Schema: bad, Strict: true}).Run(logging.NewNop()))
}
