package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/payrolld/internal/domain"
	"github.com/punchamoorthee/payrolld/internal/service"
)

const testTxHash = "3a8d2f1e5b9c04a7d6e1f2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f7"

// mockPayroll implements Payroll for handler tests.
type mockPayroll struct {
	submitResult *domain.SubmitResult
	submitErr    error
	history      []domain.PayrollRecord
	historyErr   error
	status       *domain.TransactionStatus
	statusErr    error
}

func (m *mockPayroll) Submit(ctx context.Context, req domain.PayrollRequest) (*domain.SubmitResult, error) {
	return m.submitResult, m.submitErr
}

func (m *mockPayroll) History(ctx context.Context) ([]domain.PayrollRecord, error) {
	return m.history, m.historyErr
}

func (m *mockPayroll) Status(ctx context.Context, txHash string) (*domain.TransactionStatus, error) {
	return m.status, m.statusErr
}

func doRequest(t *testing.T, p Payroll, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(NewHandler(p))
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitPayrollSuccess(t *testing.T) {
	p := &mockPayroll{
		submitResult: &domain.SubmitResult{
			Success:     true,
			TxHash:      testTxHash,
			ExplorerURL: "https://preprod.cardanoscan.io/transaction/" + testTxHash,
		},
	}
	rec := doRequest(t, p, "POST", "/build_and_submit_tx",
		`{"sender_address":"addr_test1x","payroll":[{"address":"addr_test1y","lovelace":1000000}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, testTxHash, result.TxHash)
	assert.Contains(t, result.ExplorerURL, "/transaction/"+testTxHash)
}

func TestSubmitPayrollInvalidJSON(t *testing.T) {
	rec := doRequest(t, &mockPayroll{}, "POST", "/build_and_submit_tx", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitPayrollAddressMismatch(t *testing.T) {
	p := &mockPayroll{
		submitErr: &service.AddressMismatchError{
			Derived:   "addr_test1derived",
			Requested: "addr_test1requested",
		},
	}
	rec := doRequest(t, p, "POST", "/build_and_submit_tx", `{"sender_address":"x","payroll":[]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "addr_test1derived")
	assert.Contains(t, body["error"], "addr_test1requested")
}

func TestSubmitPayrollNoFunds(t *testing.T) {
	p := &mockPayroll{
		submitErr: &service.NoFundsError{Address: "addr_test1empty"},
	}
	rec := doRequest(t, p, "POST", "/build_and_submit_tx", `{"sender_address":"x","payroll":[]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No UTXOs")
}

func TestSubmitPayrollUnexpectedError(t *testing.T) {
	p := &mockPayroll{submitErr: assert.AnError}
	rec := doRequest(t, p, "POST", "/build_and_submit_tx", `{"sender_address":"x","payroll":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTransactionHistory(t *testing.T) {
	p := &mockPayroll{
		history: []domain.PayrollRecord{
			{TxHash: testTxHash, TotalAmount: 3_000_000, RecipientCount: 2, Status: domain.StatusPending},
		},
	}
	rec := doRequest(t, p, "GET", "/transaction_history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, testTxHash, body.Transactions[0].TxHash)
	assert.Equal(t, int64(3_000_000), body.Transactions[0].TotalAmount)
}

func TestTransactionHistoryEmpty(t *testing.T) {
	rec := doRequest(t, &mockPayroll{}, "GET", "/transaction_history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"transactions":[]`)
}

func TestGetTxInfoLocal(t *testing.T) {
	p := &mockPayroll{
		status: &domain.TransactionStatus{
			TxHash:    testTxHash,
			Source:    "local",
			Confirmed: false,
		},
	}
	rec := doRequest(t, p, "GET", "/get_tx_info/"+testTxHash, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.TransactionStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "local", status.Source)
}

func TestGetTxInfoNotFound(t *testing.T) {
	p := &mockPayroll{statusErr: service.ErrTxNotFound}
	rec := doRequest(t, p, "GET", "/get_tx_info/"+testTxHash, "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found or still pending")
}

func TestCORSPreflight(t *testing.T) {
	rec := doRequest(t, &mockPayroll{}, "OPTIONS", "/build_and_submit_tx", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
