package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recognizer/internal/api"
	"recognizer/internal/logging"
	"recognizer/internal/queue"
)

func newTestHandler(t *testing.T, token string) (http.Handler, *queue.Table, *stubWorker) {
	t.Helper()
	table := queue.NewTable()
	worker := &stubWorker{table: table}
	srv := newAPIServer("127.0.0.1:0", token, api.NewQueueService(table, worker), "/tmp/library.db", logging.NewNop())
	return srv.server.Handler, table, worker
}

func TestAPIRowsNewestFirst(t *testing.T) {
	handler, table, _ := newTestHandler(t, "")
	table.Enqueue(1, "First")
	table.Enqueue(2, "Second")
	table.UpdateStatus(1, queue.StatusSucceeded, "Done")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rows", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp api.RowsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rows) != 2 || resp.Rows[0].ID != 2 || resp.Rows[1].ID != 1 {
		t.Fatalf("unexpected rows %+v", resp.Rows)
	}
	if resp.Total != 2 || resp.Processed != 1 {
		t.Fatalf("unexpected counts total=%d processed=%d", resp.Total, resp.Processed)
	}
}

func TestAPIEnqueueAndCancel(t *testing.T) {
	handler, table, worker := newTestHandler(t, "")

	body := strings.NewReader(`{"ids":[5,5,0,6]}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/queue", body))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue status = %d body=%s", rec.Code, rec.Body.String())
	}
	var enq api.EnqueueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &enq); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if enq.Requested != 4 || enq.Added != 2 || !enq.Started {
		t.Fatalf("unexpected enqueue response %+v", enq)
	}
	if len(worker.calls) != 1 || len(worker.calls[0]) != 2 {
		t.Fatalf("expected deduped ids, got %v", worker.calls)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/queue", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", rec.Code)
	}
	var cancelResp api.CancelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cancelResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cancelResp.Removed != 2 || table.CountTotal() != 0 {
		t.Fatalf("expected 2 removed and empty table, got %+v total=%d", cancelResp, table.CountTotal())
	}
}

func TestAPIEnqueueRejectsBadBody(t *testing.T) {
	handler, _, _ := newTestHandler(t, "")
	for _, body := range []string{`not json`, `{"ids":[]}`, `{"ids":[1],"extra":true}`} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/queue", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	}
}

func TestAPIStatusIncludesWorker(t *testing.T) {
	handler, table, _ := newTestHandler(t, "")
	table.Enqueue(9, "Pending")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var resp api.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Worker.Pending != 1 || !resp.Worker.Online {
		t.Fatalf("unexpected status %+v", resp)
	}
	if resp.LibraryPath != "/tmp/library.db" || resp.PID == 0 {
		t.Fatalf("expected library path and pid, got %+v", resp)
	}
}

func TestAPIMethodNotAllowed(t *testing.T) {
	handler, _, _ := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/rows", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAPIAuth(t *testing.T) {
	handler, _, _ := newTestHandler(t, "secret")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rows", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rows", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/rows", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAPIClientRoundTrip(t *testing.T) {
	handler, _, _ := newTestHandler(t, "tok")
	server := httptest.NewServer(handler)
	defer server.Close()

	client := api.NewClient(server.URL, "tok")
	ctx := context.Background()
	enq, err := client.Enqueue(ctx, []int64{3, 4})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if enq.Added != 2 {
		t.Fatalf("expected 2 added, got %+v", enq)
	}
	rows, err := client.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows.Rows) != 2 || rows.Rows[0].ID != 4 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	cancelled, err := client.CancelAll(ctx)
	if err != nil || cancelled.Removed != 2 {
		t.Fatalf("CancelAll: %+v %v", cancelled, err)
	}

	bad := api.NewClient(server.URL, "")
	if _, err := bad.Status(ctx); err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}
