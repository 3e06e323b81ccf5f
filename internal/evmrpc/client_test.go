package evmrpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type testRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func rpcServer(t *testing.T, handler func(req testRequest) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req testRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		result, rpcErr := handler(req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChainID(t *testing.T) {
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		if req.Method != "eth_chainId" {
			t.Errorf("expected method eth_chainId, got %s", req.Method)
		}
		return "0x89", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	id, err := client.ChainID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Cmp(big.NewInt(137)) != 0 {
		t.Errorf("expected chain id 137, got %s", id)
	}
}

func TestPendingNonce(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		if req.Method != "eth_getTransactionCount" {
			t.Errorf("expected method eth_getTransactionCount, got %s", req.Method)
		}
		if len(req.Params) != 2 {
			t.Fatalf("expected 2 params, got %d", len(req.Params))
		}
		if got, _ := req.Params[0].(string); !strings.EqualFold(got, addr.Hex()) {
			t.Errorf("expected address param %s, got %v", addr.Hex(), req.Params[0])
		}
		if req.Params[1] != "pending" {
			t.Errorf("expected block tag pending, got %v", req.Params[1])
		}
		return "0x5", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	nonce, err := client.PendingNonce(context.Background(), addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nonce != 5 {
		t.Errorf("expected nonce 5, got %d", nonce)
	}
}

func TestGasPrice(t *testing.T) {
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		if req.Method != "eth_gasPrice" {
			t.Errorf("expected method eth_gasPrice, got %s", req.Method)
		}
		return "0x3b9aca00", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	price, err := client.GasPrice(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Errorf("expected gas price 1000000000, got %s", price)
	}
}

func TestSendRawTransaction(t *testing.T) {
	raw := []byte{0xf8, 0x6b, 0x01}
	wantHash := "0x" + strings.Repeat("ab", 32)
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		if req.Method != "eth_sendRawTransaction" {
			t.Errorf("expected method eth_sendRawTransaction, got %s", req.Method)
		}
		if len(req.Params) != 1 || req.Params[0] != "0xf86b01" {
			t.Errorf("expected raw tx param 0xf86b01, got %v", req.Params)
		}
		return wantHash, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	hash, err := client.SendRawTransaction(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash != common.HexToHash(wantHash) {
		t.Errorf("expected hash %s, got %s", wantHash, hash.Hex())
	}
}

func TestTransactionReceipt_Pending(t *testing.T) {
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		if req.Method != "eth_getTransactionReceipt" {
			t.Errorf("expected method eth_getTransactionReceipt, got %s", req.Method)
		}
		return nil, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	receipt, err := client.TransactionReceipt(context.Background(), common.HexToHash("0x01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt != nil {
		t.Errorf("expected nil receipt for pending transaction, got %+v", receipt)
	}
}

func TestTransactionReceipt_Mined(t *testing.T) {
	txHash := "0x" + strings.Repeat("cd", 32)
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		return map[string]any{
			"transactionHash": txHash,
			"blockNumber":     "0x10",
			"gasUsed":         "0x5208",
			"status":          "0x1",
		}, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	receipt, err := client.TransactionReceipt(context.Background(), common.HexToHash(txHash))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt == nil {
		t.Fatal("expected receipt, got nil")
	}
	if receipt.TransactionHash != common.HexToHash(txHash) {
		t.Errorf("expected tx hash %s, got %s", txHash, receipt.TransactionHash.Hex())
	}
	if receipt.BlockNumber.ToInt().Int64() != 16 {
		t.Errorf("expected block 16, got %s", receipt.BlockNumber)
	}
	if uint64(receipt.GasUsed) != 21000 {
		t.Errorf("expected gas used 21000, got %d", receipt.GasUsed)
	}
	if !receipt.Successful() {
		t.Error("expected successful receipt")
	}
}

func TestReceiptStatusFailed(t *testing.T) {
	r := &Receipt{Status: 0}
	if r.Successful() {
		t.Error("expected status 0 to report failure")
	}
}

func TestCallRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req testRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "0x1"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond), WithMaxDelay(5*time.Millisecond))
	id, err := client.ChainID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Int64() != 1 {
		t.Errorf("expected chain id 1, got %s", id)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestCallRetriesOnRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var req testRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "0x1"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	if _, err := client.GasPrice(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestCallDoesNotRetryRPCError(t *testing.T) {
	calls := 0
	server := rpcServer(t, func(req testRequest) (any, *rpcError) {
		calls++
		return nil, &rpcError{Code: -32000, Message: "insufficient funds"}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	_, err := client.GasPrice(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "insufficient funds") {
		t.Errorf("expected node error message, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected single attempt for node error, got %d", calls)
	}
}

func TestCallExhaustsRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(1), WithRetryDelay(time.Millisecond))
	_, err := client.ChainID(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("expected attempt count in error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestCallContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Hour))
	_, err := client.ChainID(ctx)
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
}
