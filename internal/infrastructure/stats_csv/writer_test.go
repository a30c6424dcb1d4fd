package stats_csv

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_HeaderOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitlab_stats.csv")
	w := New(path)

	require.NoError(t, w.Append(context.Background(), domain.GroupStats{Date: "18/10/2026", TotalProjects: 3}))
	require.NoError(t, w.Append(context.Background(), domain.GroupStats{Date: "19/10/2026", TotalProjects: 4, MergedMergeRequests: 9}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, "18/10/2026", rows[1][0])
	assert.Equal(t, "4", rows[2][1])
	assert.Equal(t, "9", rows[2][10])
}

func TestAppend_EmptyPath(t *testing.T) {
	assert.Error(t, New("").Append(context.Background(), domain.GroupStats{}))
}
