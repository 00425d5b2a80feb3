package setup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pileworks/novelty/corpus"
)

// writePart produces a real Parquet part on disk and returns its bytes.
func writePart(t *testing.T, docs []document) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "part.parquet")
	require.NoError(t, parquet.WriteFile(path, docs))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestBootstrapRun(t *testing.T) {
	parts := map[string][]byte{
		"/part.0.parquet": writePart(t, []document{{Text: "first doc"}, {Text: "second doc"}}),
		"/part.1.parquet": writePart(t, []document{{Text: "third doc"}}),
	}
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		data, ok := parts[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	root := t.TempDir()
	shards := corpus.ShardSet{
		Dir:        filepath.Join(root, "Github_Split"),
		NameFormat: "The_Pile_Github_Split_%d.jsonl",
		Count:      2,
	}
	staging := filepath.Join(root, "parquet_files")

	b, err := NewBootstrapper(shards,
		WithBaseURL(server.URL+"/"),
		WithStagingDir(staging),
	)
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	t.Run("shards hold the documents", func(t *testing.T) {
		files := shards.Files()

		docs, err := corpus.LoadDocuments(files[0])
		require.NoError(t, err)
		assert.Equal(t, []string{"first doc", "second doc"}, docs)

		docs, err = corpus.LoadDocuments(files[1])
		require.NoError(t, err)
		assert.Equal(t, []string{"third doc"}, docs)
	})

	t.Run("staging directory is removed", func(t *testing.T) {
		_, err := os.Stat(staging)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("existing shards are not re-downloaded", func(t *testing.T) {
		downloaded := len(requests)
		require.NoError(t, b.Run(context.Background()))
		assert.Len(t, requests, downloaded)
	})
}

func TestBootstrapDownloadErrors(t *testing.T) {
	t.Run("missing part fails the run", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		root := t.TempDir()
		shards := corpus.ShardSet{Dir: filepath.Join(root, "corpus"), NameFormat: "shard_%d.jsonl", Count: 1}
		b, err := NewBootstrapper(shards,
			WithBaseURL(server.URL+"/"),
			WithStagingDir(filepath.Join(root, "staging")),
		)
		require.NoError(t, err)
		assert.ErrorIs(t, b.Run(context.Background()), ErrUnexpectedStatus)
	})

	t.Run("cancelled context stops the run", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "never reached")
		}))
		defer server.Close()

		root := t.TempDir()
		shards := corpus.ShardSet{Dir: filepath.Join(root, "corpus"), NameFormat: "shard_%d.jsonl", Count: 1}
		b, err := NewBootstrapper(shards,
			WithBaseURL(server.URL+"/"),
			WithStagingDir(filepath.Join(root, "staging")),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, b.Run(ctx))
	})
}

func TestBootstrapResume(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	require.NoError(t, os.MkdirAll(staging, 0755))

	// Part already staged from an earlier interrupted run.
	part := writePart(t, []document{{Text: "staged doc"}})
	require.NoError(t, os.WriteFile(filepath.Join(staging, "part.0.parquet"), part, 0644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected download of %s", r.URL.Path)
	}))
	defer server.Close()

	shards := corpus.ShardSet{Dir: filepath.Join(root, "corpus"), NameFormat: "shard_%d.jsonl", Count: 1}
	b, err := NewBootstrapper(shards,
		WithBaseURL(server.URL+"/"),
		WithStagingDir(staging),
	)
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	docs, err := corpus.LoadDocuments(filepath.Join(shards.Dir, "shard_0.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"staged doc"}, docs)
}
