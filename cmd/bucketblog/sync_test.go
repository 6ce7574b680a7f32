package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/bucketblog/objstore"
)

func TestSyncCommandFromContentDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "hello.md"),
		[]byte("---\ntitle: Hello\ntags: [blog, go]\n---\nHello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.md"),
		[]byte("---\ntags: [draft]\n---\nnot yet"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sync", "--content-dir", dir})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	var summary syncSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, dir, summary.Source)
	assert.Equal(t, 1, summary.Posts)
	assert.Equal(t, []string{"blog", "go"}, summary.Tags)
	assert.True(t, summary.Stats.Fresh)
}

func TestDescribeMinioStore(t *testing.T) {
	store, err := objstore.NewMinio(objstore.MinioConfig{Endpoint: "localhost:9000", Bucket: "notes"})
	require.NoError(t, err)
	assert.Equal(t, "s3://notes", describeStore(store))
}
