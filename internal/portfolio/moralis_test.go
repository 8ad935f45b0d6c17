package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"nightwatcher/internal/config"
)

const testAddress = "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/wallets/" + testAddress + "/tokens"
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}
		if r.URL.Query().Get("chain") != "eth" {
			t.Errorf("chain = %s, want eth", r.URL.Query().Get("chain"))
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("X-API-Key = %s, want test-key", r.Header.Get("X-API-Key"))
		}
		fmt.Fprint(w, `{"result":[
			{"symbol":"ETH","balance":"2000000000000000000","decimals":18,"usd_value":5000,"native_token":true},
			{"symbol":"USDC","balance":"100000000","decimals":6,"usd_value":100,"native_token":false},
			{"symbol":"LINK","balance":"50000000000000000000","decimals":18,"usd_value":700,"native_token":false},
			{"symbol":"UNI","balance":"10000000000000000000","decimals":18,"usd_value":60,"native_token":false},
			{"symbol":"DUST","balance":"1","decimals":18,"usd_value":0.01,"native_token":false}
		]}`)
	}))
	defer server.Close()

	c := NewClientWithURL(server.URL, "test-key")

	snapshot, err := c.Fetch(context.Background(), testAddress, "eth")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if snapshot.NativeSymbol != "ETH" {
		t.Errorf("NativeSymbol = %s, want ETH", snapshot.NativeSymbol)
	}
	if math.Abs(snapshot.NativeBalance-2.0) > 1e-9 {
		t.Errorf("NativeBalance = %f, want 2.0", snapshot.NativeBalance)
	}
	if snapshot.TokenCount != 4 {
		t.Errorf("TokenCount = %d, want 4", snapshot.TokenCount)
	}
	if math.Abs(snapshot.TotalUSD-5860.01) > 1e-6 {
		t.Errorf("TotalUSD = %f, want 5860.01", snapshot.TotalUSD)
	}

	// Top tokens sorted by USD value, capped at three.
	if len(snapshot.TopTokens) != 3 {
		t.Fatalf("len(TopTokens) = %d, want 3", len(snapshot.TopTokens))
	}
	wantOrder := []string{"LINK", "USDC", "UNI"}
	for i, want := range wantOrder {
		if snapshot.TopTokens[i].Symbol != want {
			t.Errorf("TopTokens[%d] = %s, want %s", i, snapshot.TopTokens[i].Symbol, want)
		}
	}
}

func TestFetch_EmptyPortfolio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer server.Close()

	c := NewClientWithURL(server.URL, "test-key")

	snapshot, err := c.Fetch(context.Background(), testAddress, "eth")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if snapshot.TokenCount != 0 || snapshot.TotalUSD != 0 {
		t.Errorf("empty portfolio: tokens=%d totalUSD=%f, want 0/0",
			snapshot.TokenCount, snapshot.TotalUSD)
	}
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClientWithURL(server.URL, "bad-key")

	_, err := c.Fetch(context.Background(), testAddress, "eth")
	if !errors.Is(err, config.ErrPortfolioUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrPortfolioUnavailable", err)
	}
}

func TestHumanBalance(t *testing.T) {
	tests := []struct {
		raw      string
		decimals int
		want     float64
	}{
		{"1000000000000000000", 18, 1.0},
		{"100000000", 6, 100.0},
		{"0", 18, 0},
		{"garbage", 18, 0},
	}

	for _, tt := range tests {
		got := humanBalance(tt.raw, tt.decimals)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("humanBalance(%q, %d) = %f, want %f", tt.raw, tt.decimals, got, tt.want)
		}
	}
}
