package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	scanningapp "github.com/shopadmin/scan-gateway/internal/application/scanning"
	"github.com/shopadmin/scan-gateway/internal/domain/scanning"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/cache"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/event"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/sessionstore"
	"github.com/shopadmin/scan-gateway/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	commitFn  func(ctx context.Context, tenantID, inventoryID uuid.UUID, code string, quantity int64) (*scanning.CommitResult, error)
	bulkFn    func(ctx context.Context, tenantID, inventoryID uuid.UUID, lines []scanning.BatchLine) (*scanning.BulkCommitResult, error)
	summaryFn func(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error)
}

func (g *fakeGateway) CommitScan(ctx context.Context, tenantID, inventoryID uuid.UUID, code string, quantity int64) (*scanning.CommitResult, error) {
	if g.commitFn != nil {
		return g.commitFn(ctx, tenantID, inventoryID, code, quantity)
	}
	return &scanning.CommitResult{
		ItemID:      uuid.New(),
		Code:        code,
		ProductName: "Widget",
		Quantity:    quantity,
		Method:      scanning.ScanMethodBarcode,
		Created:     true,
	}, nil
}

func (g *fakeGateway) CommitScanBulk(ctx context.Context, tenantID, inventoryID uuid.UUID, lines []scanning.BatchLine) (*scanning.BulkCommitResult, error) {
	if g.bulkFn != nil {
		return g.bulkFn(ctx, tenantID, inventoryID, lines)
	}
	results := make([]scanning.BatchLineResult, 0, len(lines))
	for _, line := range lines {
		results = append(results, scanning.BatchLineResult{Code: line.Code, Success: true})
	}
	return &scanning.BulkCommitResult{Processed: len(lines), Results: results}, nil
}

func (g *fakeGateway) FetchSummary(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error) {
	if g.summaryFn != nil {
		return g.summaryFn(ctx, tenantID, inventoryID)
	}
	return &scanning.ScanSummary{TotalItems: 10, ScannedItems: 7}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

type handlerFixture struct {
	engine  *gin.Engine
	gateway *fakeGateway
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	require.NoError(t, dto.RegisterValidations())

	gateway := &fakeGateway{}
	store := sessionstore.NewInMemoryStore(time.Hour, time.Minute, zap.NewNop())
	summaryCache := cache.NewInMemorySummaryCache(time.Minute)
	eventBus := event.NewInMemoryEventBus(zap.NewNop())
	service := scanningapp.NewSessionService(store, gateway, summaryCache, eventBus, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewScanSessionHandler(service).RegisterRoutes(api)

	return &handlerFixture{engine: engine, gateway: gateway}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func sessionPath(inventoryID uuid.UUID) string {
	return "/api/v1/scanning/inventories/" + inventoryID.String() + "/session"
}

func TestScanSessionHandler_OpenSession(t *testing.T) {
	t.Run("opens with defaults on empty body", func(t *testing.T) {
		f := newHandlerFixture(t)
		inventoryID := uuid.New()

		w, env := f.do(t, http.MethodPost, sessionPath(inventoryID), nil)

		require.Equal(t, http.StatusCreated, w.Code)
		require.True(t, env.Success)

		var session scanningapp.SessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &session))
		assert.Equal(t, "single", session.Mode)
		assert.Equal(t, inventoryID, session.InventoryID)
	})

	t.Run("opens in batch mode", func(t *testing.T) {
		f := newHandlerFixture(t)

		w, env := f.do(t, http.MethodPost, sessionPath(uuid.New()), gin.H{"mode": "batch"})

		require.Equal(t, http.StatusCreated, w.Code)

		var session scanningapp.SessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &session))
		assert.Equal(t, "batch", session.Mode)
	})

	t.Run("rejects an unknown mode", func(t *testing.T) {
		f := newHandlerFixture(t)

		w, env := f.do(t, http.MethodPost, sessionPath(uuid.New()), gin.H{"mode": "turbo"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("rejects a malformed inventory id", func(t *testing.T) {
		f := newHandlerFixture(t)

		w, env := f.do(t, http.MethodPost, "/api/v1/scanning/inventories/not-a-uuid/session", nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_BAD_REQUEST", env.Error.Code)
	})
}

func TestScanSessionHandler_GetSession(t *testing.T) {
	f := newHandlerFixture(t)
	inventoryID := uuid.New()

	w, env := f.do(t, http.MethodGet, sessionPath(inventoryID), nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)

	f.do(t, http.MethodPost, sessionPath(inventoryID), nil)
	w, _ = f.do(t, http.MethodGet, sessionPath(inventoryID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScanSessionHandler_RecordScan(t *testing.T) {
	t.Run("committed scan reports synced", func(t *testing.T) {
		f := newHandlerFixture(t)
		inventoryID := uuid.New()
		f.do(t, http.MethodPost, sessionPath(inventoryID), nil)

		w, env := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"code": "4006381333931"})

		require.Equal(t, http.StatusOK, w.Code)

		var scan scanningapp.RecordScanResponse
		require.NoError(t, json.Unmarshal(env.Data, &scan))
		assert.True(t, scan.Synced)
		assert.Equal(t, "Widget", scan.Item.DisplayName)
		assert.Equal(t, int64(1), scan.Item.Quantity)
	})

	t.Run("commit failure keeps the line and reports the error", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.gateway.commitFn = func(ctx context.Context, tenantID, inventoryID uuid.UUID, code string, quantity int64) (*scanning.CommitResult, error) {
			return nil, scanning.ErrInventoryServiceUnavailable
		}
		inventoryID := uuid.New()
		f.do(t, http.MethodPost, sessionPath(inventoryID), nil)

		w, env := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"code": "4006381333931"})

		require.Equal(t, http.StatusOK, w.Code)

		var scan scanningapp.RecordScanResponse
		require.NoError(t, json.Unmarshal(env.Data, &scan))
		assert.False(t, scan.Synced)
		assert.NotEmpty(t, scan.SyncError)
		assert.Equal(t, int64(1), scan.Item.Quantity)
	})

	t.Run("rejects a code with surrounding whitespace", func(t *testing.T) {
		f := newHandlerFixture(t)
		inventoryID := uuid.New()
		f.do(t, http.MethodPost, sessionPath(inventoryID), nil)

		w, _ := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"code": " 4006381333931"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a missing code", func(t *testing.T) {
		f := newHandlerFixture(t)
		inventoryID := uuid.New()
		f.do(t, http.MethodPost, sessionPath(inventoryID), nil)

		w, _ := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"method": "barcode"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scan against a missing session is 404", func(t *testing.T) {
		f := newHandlerFixture(t)

		w, env := f.do(t, http.MethodPost, sessionPath(uuid.New())+"/scan", gin.H{"code": "123"})

		require.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
	})
}

func TestScanSessionHandler_SubmitBatch(t *testing.T) {
	openBatchWithScans := func(t *testing.T, f *handlerFixture, inventoryID uuid.UUID, codes ...string) {
		t.Helper()
		f.do(t, http.MethodPost, sessionPath(inventoryID), gin.H{"mode": "batch"})
		for _, code := range codes {
			w, _ := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"code": code})
			require.Equal(t, http.StatusOK, w.Code)
		}
	}

	t.Run("partial failure still clears the buffer", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.gateway.bulkFn = func(ctx context.Context, tenantID, inventoryID uuid.UUID, lines []scanning.BatchLine) (*scanning.BulkCommitResult, error) {
			return &scanning.BulkCommitResult{
				Processed:   1,
				ErrorsCount: 1,
				Results: []scanning.BatchLineResult{
					{Code: lines[0].Code, Success: true},
					{Code: lines[1].Code, Success: false, Message: "unknown code"},
				},
			}, nil
		}
		inventoryID := uuid.New()
		openBatchWithScans(t, f, inventoryID, "A-1", "B-2")

		w, env := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/submit", nil)

		require.Equal(t, http.StatusOK, w.Code)

		var submit scanningapp.SubmitBatchResponse
		require.NoError(t, json.Unmarshal(env.Data, &submit))
		assert.True(t, submit.Cleared)
		assert.Equal(t, 2, submit.Submitted)
		assert.Equal(t, 1, submit.ErrorsCount)
		require.Len(t, submit.Failures, 1)
		assert.Equal(t, "B-2", submit.Failures[0].Code)

		_, env = f.do(t, http.MethodGet, sessionPath(inventoryID), nil)
		var session scanningapp.SessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &session))
		assert.Zero(t, session.ItemCount)
	})

	t.Run("transport failure is a 502 and retains the buffer", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.gateway.bulkFn = func(ctx context.Context, tenantID, inventoryID uuid.UUID, lines []scanning.BatchLine) (*scanning.BulkCommitResult, error) {
			return nil, scanning.ErrInventoryServiceUnavailable
		}
		inventoryID := uuid.New()
		openBatchWithScans(t, f, inventoryID, "A-1")

		w, env := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/submit", nil)

		require.Equal(t, http.StatusBadGateway, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_UPSTREAM_UNAVAILABLE", env.Error.Code)

		_, env = f.do(t, http.MethodGet, sessionPath(inventoryID), nil)
		var session scanningapp.SessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &session))
		assert.Equal(t, 1, session.ItemCount)
	})
}

func TestScanSessionHandler_Items(t *testing.T) {
	f := newHandlerFixture(t)
	inventoryID := uuid.New()
	f.do(t, http.MethodPost, sessionPath(inventoryID), gin.H{"mode": "batch"})
	_, env := f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"code": "A-1"})

	var scan scanningapp.RecordScanResponse
	require.NoError(t, json.Unmarshal(env.Data, &scan))
	itemPath := sessionPath(inventoryID) + "/items/" + scan.Item.ID.String()

	w, env := f.do(t, http.MethodPost, itemPath+"/adjust", gin.H{"delta": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var adjust scanningapp.AdjustQuantityResponse
	require.NoError(t, json.Unmarshal(env.Data, &adjust))
	require.NotNil(t, adjust.Item)
	assert.Equal(t, int64(4), adjust.Item.Quantity)

	w, _ = f.do(t, http.MethodDelete, itemPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = f.do(t, http.MethodDelete, itemPath, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
}

func TestScanSessionHandler_GetSummary(t *testing.T) {
	t.Run("serves the upstream summary", func(t *testing.T) {
		f := newHandlerFixture(t)
		inventoryID := uuid.New()

		w, env := f.do(t, http.MethodGet, "/api/v1/scanning/inventories/"+inventoryID.String()+"/summary", nil)

		require.Equal(t, http.StatusOK, w.Code)

		var summary scanningapp.SummaryResponse
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, scanningapp.SummarySourceServer, summary.Source)
		assert.Equal(t, 10, summary.TotalItems)
	})

	t.Run("falls back to the local projection", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.gateway.summaryFn = func(ctx context.Context, tenantID, inventoryID uuid.UUID) (*scanning.ScanSummary, error) {
			return nil, scanning.ErrInventoryServiceUnavailable
		}
		inventoryID := uuid.New()
		f.do(t, http.MethodPost, sessionPath(inventoryID), gin.H{"mode": "batch"})
		f.do(t, http.MethodPost, sessionPath(inventoryID)+"/scan", gin.H{"code": "A-1"})

		w, env := f.do(t, http.MethodGet, "/api/v1/scanning/inventories/"+inventoryID.String()+"/summary", nil)

		require.Equal(t, http.StatusOK, w.Code)

		var summary scanningapp.SummaryResponse
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, scanningapp.SummarySourceLocal, summary.Source)
		assert.Equal(t, 1, summary.TotalItems)
		assert.Zero(t, summary.Discrepancies)
	})
}

func TestScanSessionHandler_CloseSession(t *testing.T) {
	f := newHandlerFixture(t)
	inventoryID := uuid.New()
	f.do(t, http.MethodPost, sessionPath(inventoryID), nil)

	w, _ := f.do(t, http.MethodDelete, sessionPath(inventoryID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env := f.do(t, http.MethodDelete, sessionPath(inventoryID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
}
