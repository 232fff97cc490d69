package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonmarket/ledger-backend/internal/auth"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/pkg/clock"
	"carbonmarket/ledger-backend/pkg/payments"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnv struct {
	engine   *core.Engine
	deployer uuid.UUID
	router   *gin.Engine
	caller   uuid.UUID
}

// newAPIEnv mounts the ledger routes with a fixed authenticated caller.
func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	deployer := uuid.New()
	engine := core.NewEngine(deployer, clock.NewManual(100), payments.NewRecordingGateway(true))

	env := &apiEnv{engine: engine, deployer: deployer, caller: uuid.New()}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.ContextPrincipal, env.caller)
	})

	projects := NewProjectHandler(engine, nil, nil)
	credits := NewCreditHandler(engine, nil, nil, nil)
	admin := NewAdminHandler(engine, nil)

	r.POST("/projects", projects.Register)
	r.GET("/projects/:id", projects.Get)
	r.GET("/projects/:id/verification", projects.GetVerification)
	r.POST("/projects/:id/readings", projects.SubmitReading)
	r.POST("/credits", credits.Issue)
	r.GET("/credits/:id", credits.Get)
	r.POST("/credits/:id/retire", credits.Retire)
	r.POST("/admin/pause", admin.Pause)

	env.router = r
	return env
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndGetProject(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/projects", gin.H{
		"name":                   "Mangrove Restoration",
		"location":               "Indonesia",
		"category":               "blue-carbon",
		"expected_annual_offset": 5000,
		"sensors":                []string{"S-1", "S-2"},
		"biodiversity_score":     85,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ProjectID uint64 `json:"project_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, uint64(1), created.ProjectID)

	rec = env.do(t, http.MethodGet, "/projects/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var project core.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Equal(t, "Mangrove Restoration", project.Name)
	assert.Equal(t, env.caller, project.Owner)
	assert.True(t, project.Active)
}

func TestRegisterProjectValidationError(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/projects", gin.H{
		"name":                   "Empty",
		"expected_annual_offset": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_amount")
}

func TestGetMissingProjectReturnsNotFound(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/projects/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_project")
}

func TestIssueCreditBeforeVerificationConflicts(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/projects", gin.H{
		"name":                   "Solar Farm",
		"expected_annual_offset": 1000,
		"sensors":                []string{"S-1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/credits", gin.H{
		"project_id": 1,
		"amount":     100,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_verification")
}

func TestIssueRetireFlow(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/projects", gin.H{
		"name":                   "Wind Farm",
		"expected_annual_offset": 1000,
		"sensors":                []string{"S-1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for i := 0; i < int(core.DefaultVerificationThreshold); i++ {
		rec = env.do(t, http.MethodPost, "/projects/1/readings", gin.H{
			"sensor_id": "S-1",
			"co2_grams": 500,
			"data_hash": "h",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/credits", gin.H{
		"project_id": 1,
		"amount":     100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var credit core.Credit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &credit))
	assert.Equal(t, uint64(100), credit.Amount)

	rec = env.do(t, http.MethodPost, "/credits/1/retire", gin.H{"amount": 40})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/credits/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &credit))
	assert.Equal(t, uint64(60), credit.Amount)
	assert.False(t, credit.Retired)
}

func TestPauseRequiresAdmin(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/pause", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}
