package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_CleanIndexReportsNoInconsistencies(t *testing.T) {
	o, root := newTestOrchestrator(t, true)
	writeFile(t, root, "auth.go", "package auth\n\nfunc AuthenticateUser() {}\n")
	writeFile(t, root, "db.go", "package db\n\nfunc ConnectDatabase() {}\n")
	require.NoError(t, o.Index(context.Background(), IndexOptions{}))

	result, err := o.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Inconsistencies)
	assert.Equal(t, 2, result.Checked)
}

func TestQuickCheck_MatchesAfterIndexing(t *testing.T) {
	o, root := newTestOrchestrator(t, true)
	writeFile(t, root, "auth.go", "package auth\n\nfunc AuthenticateUser() {}\n")
	require.NoError(t, o.Index(context.Background(), IndexOptions{}))

	ok, err := o.QuickCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuickCheck_FlagsDriftedFileRecordCount(t *testing.T) {
	o, root := newTestOrchestrator(t, true)
	writeFile(t, root, "auth.go", "package auth\n\nfunc AuthenticateUser() {}\n")
	require.NoError(t, o.Index(context.Background(), IndexOptions{}))

	require.NoError(t, o.store.DeleteFileRecord(context.Background(), "auth.go"))

	ok, err := o.QuickCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_DetectsOrphanPosting(t *testing.T) {
	o, root := newTestOrchestrator(t, false)
	writeFile(t, root, "auth.go", "package auth\n\nfunc AuthenticateUser() {}\n")
	require.NoError(t, o.Index(context.Background(), IndexOptions{}))

	require.NoError(t, o.store.DeleteFileRecord(context.Background(), "auth.go"))

	result, err := o.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Inconsistencies, 1)
	assert.Equal(t, InconsistencyOrphanPosting, result.Inconsistencies[0].Type)
	assert.Equal(t, "auth.go", result.Inconsistencies[0].Subject)
}
