package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/pathfind"
	"github.com/nconklindev/sheetsync/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, StoreSheets, cfg.Store.Kind)
	assert.Equal(t, "fast", cfg.Infer.Policy)
	assert.Equal(t, infer.DefaultConfig(), cfg.Infer.Config)
	assert.Equal(t, store.ReadOptions{}, cfg.Read)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  kind: csv
  path: /data/tables
infer:
  policy: loose
  threshold: 0.9
  date_formats: ["%d/%m/%Y"]
read:
  header_row: -1
  index_col: id
`), 0644))

	t.Setenv("SHEETSYNC_INFER_MODE", "strict")
	t.Setenv("SHEETSYNC_LOG_FORMAT", "json")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, StoreCSV, cfg.Store.Kind)
	assert.Equal(t, "/data/tables", cfg.Store.Path)
	assert.Equal(t, "loose", cfg.Infer.Policy)
	assert.Equal(t, 0.9, cfg.Infer.ConfidenceThreshold)
	assert.Equal(t, []string{"%d/%m/%Y"}, cfg.Infer.DateFormats)
	assert.Equal(t, infer.ModeStrict, cfg.Infer.Mode)
	assert.Equal(t, store.ReadOptions{HeaderRow: store.AutoHeader, IndexCol: "id"}, cfg.Read)
	assert.EqualValues(t, "json", cfg.Log.Format)

	inf, err := cfg.Inferer()
	require.NoError(t, err)
	assert.Equal(t, infer.PolicyLoose, inf.Policy())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Policy", map[string]string{"SHEETSYNC_INFER_POLICY": "greedy"}},
		{"Threshold", map[string]string{"SHEETSYNC_INFER_THRESHOLD": "1.5"}},
		{"Mode", map[string]string{"SHEETSYNC_INFER_MODE": "lenient"}},
		{"Header row", map[string]string{"SHEETSYNC_READ_HEADER_ROW": "-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New(), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Sheets without id", Config{Store: StoreConfig{Kind: StoreSheets}}, true},
		{"Sheets", Config{Store: StoreConfig{Kind: StoreSheets}, Sheets: SheetsConfig{SpreadsheetID: "abc"}}, false},
		{"SQL without dsn", Config{Store: StoreConfig{Kind: StoreSQL}}, true},
		{"XLSX without path", Config{Store: StoreConfig{Kind: StoreXLSX}}, true},
		{"CSV", Config{Store: StoreConfig{Kind: StoreCSV}}, false},
		{"Unknown", Config{Store: StoreConfig{Kind: "ftp"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateStore()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/proj/credentials", 0755))
	require.NoError(t, fs.MkdirAll("/proj/feather", 0755))
	require.NoError(t, fs.MkdirAll("/proj/app/sub", 0755))
	f := &pathfind.Finder{Fs: fs}

	cfg := Config{Sheets: SheetsConfig{Credentials: "key.json"}, Store: StoreConfig{Kind: StoreFeather}}

	creds, err := cfg.CredentialsPath(f, "/proj/app/sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.FromSlash("/proj/credentials"), "key.json"), creds)

	dir, err := cfg.StorePath(f, "/proj/app/sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/proj/feather"), dir)

	cfg.Sheets.Credentials = "/etc/key.json"
	creds, err = cfg.CredentialsPath(f, "/proj/app")
	require.NoError(t, err)
	assert.Equal(t, "/etc/key.json", creds)

	cfg.Sheets.Credentials = "key.json"
	_, err = cfg.CredentialsPath(f, "/elsewhere")
	assert.ErrorIs(t, err, pathfind.ErrNotFound)
}
