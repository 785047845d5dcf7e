package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceylonmate/culture-kb/internal/catalog"
	"github.com/ceylonmate/culture-kb/internal/models"
	"github.com/ceylonmate/culture-kb/internal/storage"
)

var configKeys = []string{
	"KB_STORAGE_DRIVER", "MONGO_URI", "MONGO_DATABASE", "KB_COLLECTION",
	"KB_VECTOR_INDEX", "POSTGRES_DSN", "KB_SQLITE_PATH", "KB_EMBEDDING_PROVIDER",
	"KB_EMBEDDING_MODEL", "KB_EMBEDDING_DIMENSIONS", "HF_TOKEN", "HF_INFERENCE_URL",
	"OLLAMA_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
	"KB_CATALOG", "KB_EMBED_RATE", "LOG_LEVEL", "LOG_HANDLER",
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("LOG_LEVEL", "error")
}

// execute runs the root command with a non-existent .env so the developer's
// own settings never leak into a test
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestIngest_MissingMongoURI(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "--catalog", "../../data/cultural_knowledge.yaml", "ingest")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrMissingDSN)
}

func TestIngest_UnreachableMongo(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MONGO_URI", "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200")

	_, err := execute(t, "--catalog", "../../data/cultural_knowledge.yaml", "ingest")
	assert.Error(t, err)
}

func TestIngest_MissingCatalog(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MONGO_URI", "mongodb://127.0.0.1:1")

	_, err := execute(t, "--catalog", filepath.Join(t.TempDir(), "nope.yaml"), "ingest")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngest_EmptyCatalog(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "--catalog", writeCatalog(t, "records: []\n"), "ingest")
	assert.ErrorIs(t, err, catalog.ErrEmpty)
}

func TestModels_MissingKey(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "models")
	assert.ErrorIs(t, err, models.ErrMissingAPIKey)
}

func TestInvalidConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("KB_EMBEDDING_DIMENSIONS", "lots")

	_, err := execute(t, "ingest")
	assert.Error(t, err)
}
