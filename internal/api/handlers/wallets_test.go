package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"nightwatcher/internal/config"
	"nightwatcher/internal/store"
	"nightwatcher/internal/tracker"
)

const testAddress = "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"

// fakeOracle serves balances from a map; unknown addresses are unavailable.
type fakeOracle struct {
	balances map[string]float64
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) Balance(_ context.Context, address string) (float64, error) {
	b, ok := f.balances[address]
	if !ok {
		return 0, fmt.Errorf("%w: no balance for %s", config.ErrOracleUnavailable, address)
	}
	return b, nil
}

func newTestTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := st.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return tracker.New(st, &fakeOracle{balances: map[string]float64{testAddress: 1.5}})
}

func decodeError(t *testing.T, body string) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("decode error envelope from %q: %v", body, err)
	}
	return envelope.Error.Code
}

func TestTrackWalletHandler_Created(t *testing.T) {
	handler := TrackWalletHandler(newTestTracker(t))

	body := fmt.Sprintf(`{"chat_id":100,"address":"%s"}`, testAddress)
	req := httptest.NewRequest(http.MethodPost, "/api/wallets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Address     string  `json:"address"`
			LastBalance float64 `json:"last_balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Address != testAddress {
		t.Errorf("address = %s, want %s", envelope.Data.Address, testAddress)
	}
	if envelope.Data.LastBalance != 1.5 {
		t.Errorf("last_balance = %f, want 1.5", envelope.Data.LastBalance)
	}
}

func TestTrackWalletHandler_InvalidAddress(t *testing.T) {
	handler := TrackWalletHandler(newTestTracker(t))

	req := httptest.NewRequest(http.MethodPost, "/api/wallets",
		strings.NewReader(`{"chat_id":100,"address":"nope"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if code := decodeError(t, rec.Body.String()); code != config.ErrorInvalidAddress {
		t.Errorf("error code = %s, want %s", code, config.ErrorInvalidAddress)
	}
}

func TestTrackWalletHandler_MalformedBody(t *testing.T) {
	handler := TrackWalletHandler(newTestTracker(t))

	req := httptest.NewRequest(http.MethodPost, "/api/wallets", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrackWalletHandler_MissingChatID(t *testing.T) {
	handler := TrackWalletHandler(newTestTracker(t))

	req := httptest.NewRequest(http.MethodPost, "/api/wallets",
		strings.NewReader(fmt.Sprintf(`{"address":"%s"}`, testAddress)))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrackWalletHandler_Duplicate(t *testing.T) {
	trk := newTestTracker(t)
	handler := TrackWalletHandler(trk)

	body := fmt.Sprintf(`{"chat_id":100,"address":"%s"}`, testAddress)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/wallets", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first registration status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/wallets", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
	if code := decodeError(t, rec.Body.String()); code != config.ErrorAlreadyTracked {
		t.Errorf("error code = %s, want %s", code, config.ErrorAlreadyTracked)
	}
}

func TestListWalletsHandler(t *testing.T) {
	trk := newTestTracker(t)
	if _, err := trk.Track(context.Background(), 100, testAddress); err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	handler := ListWalletsHandler(trk)

	req := httptest.NewRequest(http.MethodGet, "/api/wallets?chat_id=100", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data struct {
			ChatID    int64    `json:"chat_id"`
			Addresses []string `json:"addresses"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Addresses) != 1 || envelope.Data.Addresses[0] != testAddress {
		t.Errorf("addresses = %v, want [%s]", envelope.Data.Addresses, testAddress)
	}
}

func TestListWalletsHandler_EmptyIsArray(t *testing.T) {
	handler := ListWalletsHandler(newTestTracker(t))

	req := httptest.NewRequest(http.MethodGet, "/api/wallets?chat_id=404", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"addresses":[]`) {
		t.Errorf("empty list should serialize as [], got %s", rec.Body.String())
	}
}

func TestListWalletsHandler_BadChatID(t *testing.T) {
	handler := ListWalletsHandler(newTestTracker(t))

	for _, target := range []string{"/api/wallets", "/api/wallets?chat_id=abc"} {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestStopTrackingHandler(t *testing.T) {
	trk := newTestTracker(t)
	if _, err := trk.Track(context.Background(), 100, testAddress); err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	rec := httptest.NewRecorder()
	StopTrackingHandler(trk)(rec,
		httptest.NewRequest(http.MethodDelete, "/api/wallets?chat_id=100", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	addrs, err := trk.List(context.Background(), 100)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(addrs) != 0 {
		t.Errorf("wallets after stop = %v, want none", addrs)
	}
}
