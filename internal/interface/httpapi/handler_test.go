package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/infrastructure/config"
	"flightsurety-service/internal/infrastructure/persistence"
	"flightsurety-service/internal/interface/httpapi"
	ledgerRepo "flightsurety-service/internal/interface/repository"
	"flightsurety-service/internal/usecase"
	"flightsurety-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	owner   = addr(0xA0)
	founder = addr(0x01)
)

func addr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := persistence.OpenSQLite(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := ledgerRepo.NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))

	cfg := config.DefaultLedgerConfig()
	cfg.Owner = owner
	cfg.FoundingAirline = founder

	log := logger.NewNop()
	ledger, err := usecase.NewLedger(store, nil, ledgerRepo.NewLoggingPayoutGateway(log), cfg, nil, log)
	require.NoError(t, err)
	require.NoError(t, ledger.Initialize(context.Background()))

	router := gin.New()
	httpapi.NewHandler(ledger, log).Register(router.Group("/api/v1"))
	return router
}

func call(t *testing.T, router *gin.Engine, method, path, caller string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(httpapi.CallerHeader, caller)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestOperationalRoutes(t *testing.T) {
	t.Run("should report operational", func(t *testing.T) {
		router := setupAPI(t)

		w, body := call(t, router, http.MethodGet, "/api/v1/operational", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["operational"])
	})

	t.Run("should require a caller to pause", func(t *testing.T) {
		router := setupAPI(t)

		w, _ := call(t, router, http.MethodPut, "/api/v1/operational", "", gin.H{"operational": false})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should forbid non-owners", func(t *testing.T) {
		router := setupAPI(t)

		w, body := call(t, router, http.MethodPut, "/api/v1/operational", founder, gin.H{"operational": false})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "unauthorized", body["code"])
	})

	t.Run("should answer 503 while paused", func(t *testing.T) {
		router := setupAPI(t)

		w, _ := call(t, router, http.MethodPut, "/api/v1/operational", owner, gin.H{"operational": false})
		require.Equal(t, http.StatusOK, w.Code)

		w, body := call(t, router, http.MethodPost, "/api/v1/airlines/fund", founder, gin.H{"amount": "10"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "operational", body["code"])
	})
}

func TestInsuranceFlow(t *testing.T) {
	router := setupAPI(t)
	passenger := addr(0x31)
	flight := gin.H{"airline": founder, "code": "FS0101", "departure": 1767225600}

	w, _ := call(t, router, http.MethodPost, "/api/v1/airlines/fund", founder, gin.H{"amount": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, router, http.MethodPost, "/api/v1/flights", founder, gin.H{"code": "FS0101", "departure": 1767225600})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := call(t, router, http.MethodPost, "/api/v1/insurance", passenger,
		gin.H{"airline": founder, "code": "FS0101", "departure": 1767225600, "premium": "2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "premium_exceeds_cap", body["code"])
	assert.NotEmpty(t, body["events"])

	w, _ = call(t, router, http.MethodPost, "/api/v1/insurance", passenger,
		gin.H{"airline": founder, "code": "FS0101", "departure": 1767225600, "premium": "1"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = call(t, router, http.MethodPost, "/api/v1/credits", owner, gin.H{
		"airline": founder, "code": "FS0101", "departure": 1767225600, "percentage": 150,
	})
	assert.Equal(t, http.StatusTooEarly, w.Code)
	assert.Equal(t, true, body["retryable"])

	w, body = call(t, router, http.MethodPost, "/api/v1/oracle-requests", passenger, flight)
	require.Equal(t, http.StatusCreated, w.Code)
	index := body["index"]

	for i := 0; i < 3; i++ {
		oracle := addr(0x1000 + i)
		w, _ = call(t, router, http.MethodPost, "/api/v1/oracles", oracle, gin.H{"fee": "1"})
		require.Equal(t, http.StatusCreated, w.Code)

		w, body = call(t, router, http.MethodPost, "/api/v1/oracle-responses", oracle, gin.H{
			"index": index, "airline": founder, "code": "FS0101", "departure": 1767225600,
			"statusCode": int(entity.StatusLateAirline),
		})
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, true, body["closed"])

	w, body = call(t, router, http.MethodGet, fmt.Sprintf("/api/v1/flights/%s/FS0101/1767225600", founder), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RESOLVED", body["flight"].(map[string]interface{})["status"])

	credit := gin.H{"airline": founder, "code": "FS0101", "departure": 1767225600, "percentage": 1000000}
	w, _ = call(t, router, http.MethodPost, "/api/v1/credits", "", credit)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = call(t, router, http.MethodPost, "/api/v1/credits", passenger, credit)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "unauthorized", body["code"])

	credit["percentage"] = 150
	w, body = call(t, router, http.MethodPost, "/api/v1/credits", owner, credit)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.5", body["total"])

	w, body = call(t, router, http.MethodGet, "/api/v1/passengers/"+passenger+"/credits", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.5", body["balance"])

	w, body = call(t, router, http.MethodPost, "/api/v1/withdrawals", passenger, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", body["withdrawal"].(map[string]interface{})["status"])

	withdrawalID := body["withdrawal"].(map[string]interface{})["id"].(string)

	w, body = call(t, router, http.MethodPost, "/api/v1/withdrawals", passenger, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "zero_balance", body["code"])

	w, body = call(t, router, http.MethodGet, "/api/v1/withdrawals/pending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["withdrawals"])

	reconcile := "/api/v1/withdrawals/" + withdrawalID + "/reconcile"
	w, _ = call(t, router, http.MethodPost, reconcile, passenger, gin.H{"transferred": false})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = call(t, router, http.MethodPost, reconcile, owner, gin.H{"transferred": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_argument", body["code"])
}

func TestAirlineRoutes(t *testing.T) {
	t.Run("should register and count airlines", func(t *testing.T) {
		router := setupAPI(t)

		w, _ := call(t, router, http.MethodPost, "/api/v1/airlines/fund", founder, gin.H{"amount": "10"})
		require.Equal(t, http.StatusOK, w.Code)

		w, body := call(t, router, http.MethodPost, "/api/v1/airlines", founder, gin.H{"address": addr(2), "name": "Airline 2"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "REGISTERED", body["airline"].(map[string]interface{})["status"])

		w, body = call(t, router, http.MethodGet, "/api/v1/airlines/count", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), body["count"])

		w, body = call(t, router, http.MethodGet, "/api/v1/airlines/"+addr(2), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["registered"])
		assert.Equal(t, false, body["funded"])
	})

	t.Run("should map domain errors", func(t *testing.T) {
		router := setupAPI(t)

		w, _ := call(t, router, http.MethodGet, "/api/v1/airlines/"+addr(9), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = call(t, router, http.MethodGet, "/api/v1/airlines/not-an-address", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = call(t, router, http.MethodPost, "/api/v1/airlines", founder, gin.H{"address": addr(2), "name": "Airline 2"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w, _ = call(t, router, http.MethodPost, "/api/v1/flights", founder, gin.H{"code": "FS0101", "departure": 1767225600})
		assert.Equal(t, http.StatusPreconditionFailed, w.Code)

		w, _ = call(t, router, http.MethodGet, "/api/v1/oracle-requests/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
