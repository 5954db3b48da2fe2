package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/plenum/internal/config"
	"github.com/agenthands/plenum/internal/core"
	"github.com/agenthands/plenum/internal/driver"
)

func newTestServer(m *driver.MockDriver) *gin.Engine {
	return newTestServerAt(m, config.Default().Import.DatasetsDir)
}

func newTestServerAt(m *driver.MockDriver, datasetsDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	imp := core.NewImporter(m, nil, core.DefaultOptions())
	imp.IsTransient = func(error) bool { return false }
	cfg := config.Default().Import
	cfg.DatasetsDir = datasetsDir
	return NewServer(imp, core.NewInspector(m), cfg, nil).SetupRouter()
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImport(t *testing.T) {
	mock := &driver.MockDriver{}
	r := newTestServer(mock)

	w := do(r, http.MethodPost, "/import", []byte(`{
		"partidos": [{"sigla": "AAA", "id": 1, "nome": "Partido A"}],
		"deputados": [{"id": 10, "siglaPartido": "AAA", "idLegislatura": 56, "nome": "X"}]
	}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report core.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Legislatures)
	require.Len(t, report.Stages, 7)
	assert.Equal(t, 1, report.Stages[2].Records)

	assert.NotEmpty(t, mock.CallsMatching("MERGE (n:Deputado "))
}

func TestImportMissingKey(t *testing.T) {
	r := newTestServer(&driver.MockDriver{})

	w := do(r, http.MethodPost, "/import", []byte(`{"partidos": [{"nome": "sem sigla"}]}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "natural key")
}

func TestImportMalformedBody(t *testing.T) {
	r := newTestServer(&driver.MockDriver{})

	w := do(r, http.MethodPost, "/import", []byte(`{"partidos": `))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportStoreFailure(t *testing.T) {
	mock := &driver.MockDriver{
		OnQuery: func(string, map[string]interface{}) (neo4j.EagerResult, error) {
			return neo4j.EagerResult{}, errors.New("offline")
		},
	}
	r := newTestServer(mock)

	w := do(r, http.MethodPost, "/import", []byte(`{"partidos": [{"sigla": "AAA"}]}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "constraints")
}

func TestImportDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2024")
	require.NoError(t, os.Mkdir(dir, 0o700))
	for _, name := range []string{"partidos.json", "deputados.json", "frentes.json", "orgaos.json", "proposicoes.json", "votacoes.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{"dados": []}`), 0o600))
	}
	r := newTestServerAt(&driver.MockDriver{}, root)

	body, _ := json.Marshal(ImportDirRequest{DatasetsDir: "2024"})
	w := do(r, http.MethodPost, "/import/dir", body)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/import/dir", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code, "the root itself holds no dataset files")

	body, _ = json.Marshal(ImportDirRequest{DatasetsDir: "absent"})
	w = do(r, http.MethodPost, "/import/dir", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportDirStaysInsideDatasetsDir(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	for _, name := range []string{"partidos.json", "deputados.json", "frentes.json", "orgaos.json", "proposicoes.json", "votacoes.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(outside, name), []byte(`{"dados": []}`), 0o600))
	}
	mock := &driver.MockDriver{}
	r := newTestServerAt(mock, root)

	rel, err := filepath.Rel(root, outside)
	require.NoError(t, err)

	for _, p := range []string{outside, rel, "../x", "a/../../b"} {
		body, _ := json.Marshal(ImportDirRequest{DatasetsDir: p})
		w := do(r, http.MethodPost, "/import/dir", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, p)
		assert.Contains(t, w.Body.String(), "escapes datasets directory", p)
	}
	assert.Empty(t, mock.Calls())
}

func TestImportRejectsUnknownCollections(t *testing.T) {
	mock := &driver.MockDriver{}
	r := newTestServer(mock)

	w := do(r, http.MethodPost, "/import", []byte(`{"partido": [{"sigla": "AAA"}], "deputado": [{"id": 1}]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "partido")

	w = do(r, http.MethodPost, "/import", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing dataset")

	assert.Empty(t, mock.Calls(), "nothing may reach the store")
}

func TestStats(t *testing.T) {
	mock := &driver.MockDriver{
		OnQuery: func(q string, _ map[string]interface{}) (neo4j.EagerResult, error) {
			if q == driver.CountNodesQuery {
				return neo4j.EagerResult{Records: []*neo4j.Record{
					{Keys: []string{"label", "count"}, Values: []any{"Partido", int64(1)}},
				}}, nil
			}
			return neo4j.EagerResult{}, nil
		},
	}
	r := newTestServer(mock)

	w := do(r, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats core.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Nodes["Partido"])
}

func TestGraph(t *testing.T) {
	r := newTestServer(&driver.MockDriver{})

	w := do(r, http.MethodGet, "/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results": null}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(newTestServer(&driver.MockDriver{}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(newTestServer(&driver.MockDriver{ConnectErr: errors.New("down")}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
