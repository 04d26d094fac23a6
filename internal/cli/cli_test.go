package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

type result struct {
	stdout string
	stderr string
	code   int
}

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
	stdin     io.Reader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	in := e.stdin
	if in == nil {
		in = strings.NewReader("")
	}
	all := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(context.Background(), all, in, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "pantry %v\nstdout: %s\nstderr: %s", args, r.stdout, r.stderr)
	return r
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestVersionLeavesNoFiles(t *testing.T) {
	e := newTestEnv(t)
	r := e.mustRun("version")

	assert.Contains(t, r.stdout, "pantry v")
	assert.Contains(t, r.stdout, "github.com/mesh-intelligence/pantry")
	_, err := os.Stat(e.configDir)
	assert.True(t, os.IsNotExist(err), "version must not create the config dir")
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)
	r := e.mustRun("init")
	assert.Contains(t, r.stdout, "Pantry initialized")

	cfg, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "backend: jsonl")
	assert.Contains(t, string(cfg), "log_level: warn")

	for _, name := range types.CollectionNames {
		_, err := os.Stat(filepath.Join(e.dataDir, name+".jsonl"))
		assert.NoError(t, err, name)
	}

	// Idempotent.
	e.mustRun("init")
}

func TestBackendFromConfigFile(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"),
		[]byte("backend: sqlite\n"), 0o644))

	e.mustRun("init")
	_, err := os.Stat(filepath.Join(e.dataDir, "pantry.db"))
	assert.NoError(t, err)
}

func TestRecordLifecycle(t *testing.T) {
	for _, backend := range types.BackendNames {
		t.Run(backend, func(t *testing.T) {
			e := newTestEnv(t)
			run := func(args ...string) result {
				return e.mustRun(append([]string{"--backend", backend}, args...)...)
			}

			r := run("--json", "add", "groceries", `{"name":"Milk","category":"dairy"}`)
			milk := parseJSON[map[string]any](t, r.stdout)
			id, _ := milk["id"].(string)
			require.NotEmpty(t, id)
			assert.EqualValues(t, 1, milk["quantity"], "quantity defaults to one")

			run("add", "groceries", `{"name":"Eggs","quantity":12,"category":"dairy"}`)
			run("add", "groceries", `{"name":"Apples","quantity":6,"category":"fruit"}`)

			r = run("--json", "toggle", "groceries", id, "bought")
			assert.Equal(t, true, parseJSON[map[string]any](t, r.stdout)["bought"])

			r = run("--json", "list", "groceries", "--where", "bought=true")
			bought := parseJSON[[]map[string]any](t, r.stdout)
			require.Len(t, bought, 1)
			assert.Equal(t, id, bought[0]["id"])

			r = run("--json", "update", "groceries", id, `{"quantity":3}`)
			assert.EqualValues(t, 3, parseJSON[map[string]any](t, r.stdout)["quantity"])

			r = run("get", "groceries", id)
			assert.Contains(t, r.stdout, "Milk")

			r = run("delete", "groceries", id)
			assert.Contains(t, r.stdout, "Deleted grocery "+id)

			r = run("--json", "list", "groceries")
			left := parseJSON[[]map[string]any](t, r.stdout)
			require.Len(t, left, 2)
			assert.Equal(t, "Eggs", left[0]["name"], "sorted by category")

			r = e.run("--backend", backend, "get", "groceries", id)
			assert.Equal(t, exitUserError, r.code)
			assert.Contains(t, r.stderr, "not found")
		})
	}
}

func TestAddInvalidLeavesCollectionUnchanged(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "wishes", `{"name":"Lamp","price":30}`)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"empty name", `{"name":"  "}`, "name"},
		{"negative price", `{"name":"Tent","price":-5}`, "price"},
		{"unknown field", `{"name":"Tent","colour":"red"}`, "colour"},
		{"not json", `{name`, "invalid record data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run("add", "wishes", tt.payload)
			assert.Equal(t, exitUserError, r.code)
			assert.Contains(t, r.stderr, tt.want)
		})
	}

	r := e.mustRun("--json", "list", "wishes")
	assert.Len(t, parseJSON[[]map[string]any](t, r.stdout), 1)
}

func TestNewWithoutInputIsRejected(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("init")

	r := e.run("new", "groceries", "--accessible")
	assert.Equal(t, exitUserError, r.code, "stderr: %s", r.stderr)
	assert.Contains(t, r.stderr, "name")

	list := e.mustRun("--json", "list", "groceries")
	assert.JSONEq(t, "[]", list.stdout)
}

func TestInterruptedFormIsUserError(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("init")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	args := []string{"--config-dir", e.configDir, "--data-dir", e.dataDir, "new", "groceries", "--accessible"}
	code := run(ctx, args, strings.NewReader("Milk\n"), &stdout, &stderr)
	assert.Equal(t, exitUserError, code, "stderr: %s", stderr.String())
}

func TestUserErrors(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("init")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown collection", []string{"list", "recipes"}},
		{"missing args", []string{"get", "movies"}},
		{"unknown flag", []string{"list", "movies", "--colour"}},
		{"bad filter", []string{"list", "movies", "--where", "rating=high"}},
		{"filter without value", []string{"list", "movies", "--where", "rating"}},
		{"unknown sort", []string{"list", "movies", "--sort", "director"}},
		{"day range without day field", []string{"list", "groceries", "--from", "2024-01-01"}},
		{"toggle non-flag", []string{"toggle", "movies", "x", "title"}},
		{"unknown backend", []string{"--backend", "postgres", "list", "movies"}},
		{"bad month", []string{"calendar", "--month", "March"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run(tt.args...)
			assert.Equal(t, exitUserError, r.code, "stderr: %s", r.stderr)
			assert.NotEmpty(t, r.stderr)
		})
	}
}

func TestSystemErrorExitsTwo(t *testing.T) {
	e := newTestEnv(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))
	e.dataDir = blocker

	r := e.run("list", "movies")
	assert.Equal(t, exitSysError, r.code, "stderr: %s", r.stderr)
}

func TestListTextOutput(t *testing.T) {
	e := newTestEnv(t)
	for _, m := range []string{
		`{"title":"Heat","watched":"2024-05-02","rating":4,"favorite":true}`,
		`{"title":"Alien","watched":"2024-05-01","rating":5,"favorite":true}`,
		`{"title":"Clue","watched":"2024-04-20","rating":3}`,
	} {
		e.mustRun("add", "movies", m)
	}

	r := e.mustRun("list", "movies", "--where", "favorite=true", "--sort", "rating", "--desc")
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Alien")
	assert.Contains(t, lines[2], "Heat")
	assert.Equal(t, "Total: 2 movies", lines[3])

	r = e.mustRun("list", "movies", "--limit", "1")
	assert.Contains(t, r.stdout, "Clue", "default sort is by watched day")
	assert.Contains(t, r.stdout, "Total: 1 movie\n")

	r = e.mustRun("list", "movies", "--from", "2024-05-01", "--to", "2024-05-01")
	assert.Contains(t, r.stdout, "Alien")
	assert.NotContains(t, r.stdout, "Heat")

	r = e.mustRun("list", "ideas")
	assert.Equal(t, "No ideas found.\n", r.stdout)
}

func TestWishesOutstanding(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "wishes", `{"name":"Kettle","price":40}`)
	e.mustRun("add", "wishes", `{"name":"Boots","price":120.5,"purchased":true}`)
	e.mustRun("add", "wishes", `{"name":"Book","price":12.25}`)

	r := e.mustRun("list", "wishes")
	assert.Contains(t, r.stdout, "Outstanding: 52.25")

	r = e.mustRun("--json", "list", "wishes")
	assert.NotContains(t, r.stdout, "Outstanding")
}

func TestDaysAndCalendar(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "moods", `{"day":"2024-03-02","color":"#336699","weather":"rainy"}`)
	e.mustRun("add", "moods", `{"day":"2024-03-01","color":"#ffcc00","weather":"sunny"}`)
	e.mustRun("add", "moods", `{"day":"2024-04-01","color":"#00ff00"}`)

	r := e.mustRun("days", "moods", "--to", "2024-03-31")
	assert.Less(t, strings.Index(r.stdout, "2024-03-01"), strings.Index(r.stdout, "2024-03-02"))
	assert.NotContains(t, r.stdout, "2024-04-01")

	r = e.mustRun("calendar", "--month", "2024-03")
	assert.Contains(t, r.stdout, "March 2024")
	assert.Contains(t, r.stdout, "31")

	r = e.mustRun("--json", "calendar", "--month", "2024-03")
	days := parseJSON[[]map[string]any](t, r.stdout)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0]["day"])

	r = e.run("days", "groceries")
	assert.Equal(t, exitUserError, r.code)
}

func TestUpdateFromStdin(t *testing.T) {
	e := newTestEnv(t)
	r := e.mustRun("--json", "add", "ideas", `{"title":"Picnic"}`)
	id := parseJSON[map[string]any](t, r.stdout)["id"].(string)

	e.stdin = strings.NewReader(`{"planned":"2030-06-01","notes":"bring a blanket"}`)
	r = e.mustRun("--json", "update", "ideas", id, "-")
	idea := parseJSON[map[string]any](t, r.stdout)
	assert.Equal(t, "Picnic", idea["title"])
	assert.Equal(t, "2030-06-01", idea["planned"], "ideas may be planned ahead")
}

func TestWatchNeedsJSONL(t *testing.T) {
	e := newTestEnv(t)
	r := e.run("--backend", "sqlite", "watch", "movies")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "jsonl")
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "groceries", `{"name":"Rice"}`)
	e.mustRun("add", "movies", `{"title":"Heat","watched":"2024-05-02"}`)

	backup := filepath.Join(t.TempDir(), "backup")
	r := e.mustRun("export", "--to", "sqlite", "--to-dir", backup)
	assert.Contains(t, r.stdout, "groceries")

	other := newTestEnv(t)
	other.dataDir = backup
	r = other.mustRun("--backend", "sqlite", "--json", "list", "movies")
	movies := parseJSON[[]map[string]any](t, r.stdout)
	require.Len(t, movies, 1)
	assert.Equal(t, "Heat", movies[0]["title"])

	fresh := newTestEnv(t)
	r = fresh.mustRun("--json", "import", "--from", "sqlite", "--from-dir", backup)
	counts := parseJSON[[]map[string]any](t, r.stdout)
	assert.Len(t, counts, len(types.CollectionNames))
	r = fresh.mustRun("--json", "list", "groceries")
	assert.Len(t, parseJSON[[]map[string]any](t, r.stdout), 1)

	r = e.run("export", "--to", "jsonl", "--to-dir", e.dataDir)
	assert.Equal(t, exitUserError, r.code, "refuses to copy onto itself")
}

func TestCollections(t *testing.T) {
	e := newTestEnv(t)
	r := e.mustRun("collections")
	for _, name := range types.CollectionNames {
		assert.Contains(t, r.stdout, name)
	}

	r = e.mustRun("--json", "collections")
	assert.Len(t, parseJSON[[]map[string]any](t, r.stdout), len(types.CollectionNames))
}
