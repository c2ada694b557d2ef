package geodata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"safe-route-server/routing"
)

func TestGraphSnapshotRoundTrip(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	segments := []routing.RoadSegment{
		{Line: orb.LineString{{85.30, 27.70}, {85.31, 27.70}}, Surface: "asphalt"},
		{Line: orb.LineString{{85.31, 27.70}, {85.32, 27.71}}, Surface: "gravel"},
	}
	g, err := routing.BuildGraph(segments, logger)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "graph.gob")
	require.NoError(t, SaveGraphSnapshot(path, g))

	loaded, err := LoadGraphSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, len(g.Nodes), len(loaded.Nodes))
	assert.Equal(t, g.EdgeCount(), loaded.EdgeCount())
	assert.Equal(t, g.ComponentCount(), loaded.ComponentCount())
	assert.Equal(t, g.Nodes, loaded.Nodes)
}

func TestLoadGraphSnapshotMissingFile(t *testing.T) {
	_, err := LoadGraphSnapshot(filepath.Join(t.TempDir(), "nope.gob"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "missing snapshot must be distinguishable from a corrupt one")
}

func TestLoadGraphSnapshotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob"), 0o644))

	_, err := LoadGraphSnapshot(path)
	assert.Error(t, err)
}
