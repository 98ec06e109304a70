package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"metric-backend/internal/adapter/middleware"
	"metric-backend/internal/adapter/repository/mysql"
	"metric-backend/internal/infrastructure/metrics"
	"metric-backend/internal/testutil/dbtest"
	"metric-backend/internal/usecase"
	"metric-backend/internal/usecase/insurance"
	"metric-backend/internal/usecase/loan"
	"metric-backend/internal/usecase/trust"
	"metric-backend/internal/usecase/user"
)

var (
	borrowerHex = strings.Repeat("b", 32)
	lenderHex   = strings.Repeat("a", 32)
	voucherHex  = strings.Repeat("c", 32)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestServer wires the full router over sqlite. rdb may be nil.
func newTestServer(t *testing.T, rdb *redis.Client) (*echo.Echo, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t)
	repos := mysql.Repos(gdb)
	tx := mysql.NewGormUoW(gdb)
	rec := usecase.NewRecorder(nil, metrics.New())

	pool := insurance.NewUsecase(repos, tx, dec("0.8"), 5*time.Second, rec)
	loans := loan.NewUsecase(repos, tx, pool, loan.Policy{
		MinAmount:   dec("100"),
		MaxAmount:   dec("50000"),
		MinDuration: 1,
		MaxDuration: 24,
	}, rec)
	users := user.NewUsecase(repos, tx, pool, user.Policy{
		StartingBalance:     dec("10000"),
		InitialContribution: dec("25"),
	}, rec)
	vouches := trust.NewUsecase(tx, dec("10"), 5*time.Second, rec)

	e := NewRouter(RouterDeps{
		Metrics:   rec.Metrics,
		Redis:     rdb,
		IdempTTL:  time.Minute,
		Health:    NewHandler(nil),
		Loans:     NewLoanHandler(loans),
		Users:     NewUserHandler(users),
		Trust:     NewTrustHandler(vouches),
		Insurance: NewInsuranceHandler(pool),
	})
	return e, gdb
}

func call(t *testing.T, e *echo.Echo, method, path, userID string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, code, rec.Body.String())
	}
}

func wantErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	wantStatus(t, rec, status)
	var er ErrorResponse
	decode(t, rec, &er)
	if er.Code != code {
		t.Fatalf("error code = %q, want %q (%s)", er.Code, code, er.Error)
	}
}

func onboard(t *testing.T, e *echo.Echo, userID, role string) {
	t.Helper()
	wantStatus(t, call(t, e, http.MethodPost, "/users/sign-in", userID, map[string]string{}, nil), http.StatusCreated)
	wantStatus(t, call(t, e, http.MethodPost, "/users/me/role", userID, map[string]string{"role": role}, nil), http.StatusOK)
}

func TestRouter_Unauthenticated(t *testing.T) {
	e, _ := newTestServer(t, nil)

	wantStatus(t, call(t, e, http.MethodGet, "/users/me", "", nil, nil), http.StatusUnauthorized)
	wantStatus(t, call(t, e, http.MethodGet, "/users/me", "not-a-hex-id", nil, nil), http.StatusUnauthorized)
	wantStatus(t, call(t, e, http.MethodGet, "/health", "", nil, nil), http.StatusOK)
	wantStatus(t, call(t, e, http.MethodGet, "/metrics", "", nil, nil), http.StatusOK)
}

func TestRouter_Onboarding(t *testing.T) {
	e, gdb := newTestServer(t, nil)

	wantStatus(t, call(t, e, http.MethodPost, "/users/sign-in", borrowerHex, map[string]string{"name": "Ada"}, nil), http.StatusCreated)
	wantStatus(t, call(t, e, http.MethodPost, "/users/sign-in", borrowerHex, map[string]string{}, nil), http.StatusOK)

	wantErrorCode(t, call(t, e, http.MethodPost, "/users/me/role", borrowerHex, map[string]string{"role": "admin"}, nil),
		http.StatusUnprocessableEntity, "ValidationError")

	rec := call(t, e, http.MethodPost, "/users/me/role", borrowerHex, map[string]string{"role": "borrower"}, nil)
	wantStatus(t, rec, http.StatusOK)
	var p user.ProfileDTO
	decode(t, rec, &p)
	if p.Role != "borrower" || !p.Balance.Equal(dec("9975")) {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if got := dbtest.PoolBalance(t, gdb); !got.Equal(dec("25")) {
		t.Fatalf("pool = %s, want 25", got)
	}

	rec = call(t, e, http.MethodPost, "/users/me/linked-accounts", borrowerHex,
		map[string]string{"provider": "wallet", "address": "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, nil)
	wantStatus(t, rec, http.StatusCreated)
	decode(t, rec, &p)
	if len(p.LinkedAccounts) != 1 || p.LinkedAccounts[0].Address != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Fatalf("unexpected linked accounts: %+v", p.LinkedAccounts)
	}

	wantErrorCode(t, call(t, e, http.MethodPost, "/users/me/linked-accounts", borrowerHex,
		map[string]string{"provider": "wallet", "address": "0xnothex"}, nil), http.StatusUnprocessableEntity, "ValidationError")

	wantErrorCode(t, call(t, e, http.MethodGet, "/users/me", voucherHex, nil, nil), http.StatusNotFound, "UserNotFound")
}

func TestRouter_TrustAndVerification(t *testing.T) {
	e, _ := newTestServer(t, nil)
	onboard(t, e, borrowerHex, "borrower")
	onboard(t, e, voucherHex, "lender")

	rec := call(t, e, http.MethodPost, "/vouches", voucherHex, map[string]string{"vouchee_id": borrowerHex}, nil)
	wantStatus(t, rec, http.StatusCreated)
	var v trust.VouchDTO
	decode(t, rec, &v)
	if v.VouchCount != 1 {
		t.Fatalf("vouch count = %d, want 1", v.VouchCount)
	}

	wantErrorCode(t, call(t, e, http.MethodPost, "/vouches", voucherHex, map[string]string{"vouchee_id": borrowerHex}, nil),
		http.StatusConflict, "AlreadyVouched")
	wantErrorCode(t, call(t, e, http.MethodPost, "/vouches", voucherHex, map[string]string{"vouchee_id": "BAD"}, nil),
		http.StatusUnprocessableEntity, "ValidationError")

	rec = call(t, e, http.MethodPost, "/users/me/verification", borrowerHex, map[string]string{"kind": "identity"}, nil)
	wantStatus(t, rec, http.StatusOK)
	var ver trust.VerificationDTO
	decode(t, rec, &ver)
	if !ver.IdentityVerified || ver.SocialProofVerified {
		t.Fatalf("unexpected verification: %+v", ver)
	}
}

func TestRouter_LoanLifecycle(t *testing.T) {
	e, gdb := newTestServer(t, nil)
	onboard(t, e, borrowerHex, "borrower")
	onboard(t, e, lenderHex, "lender")

	rec := call(t, e, http.MethodGet, "/risk-score", borrowerHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	var score struct {
		Score int `json:"score"`
	}
	decode(t, rec, &score)
	if score.Score < 300 || score.Score > 850 {
		t.Fatalf("score out of range: %d", score.Score)
	}

	rec = call(t, e, http.MethodGet, "/risk-score?amount=1000&duration=12", borrowerHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	var q loan.QuoteDTO
	decode(t, rec, &q)
	if q.TotalRepayment.LessThanOrEqual(dec("1000")) {
		t.Fatalf("quote should include interest: %+v", q)
	}
	wantStatus(t, call(t, e, http.MethodGet, "/risk-score?amount=abc", borrowerHex, nil, nil), http.StatusBadRequest)

	rec = call(t, e, http.MethodPost, "/loans", borrowerHex, map[string]any{"amount": 1000, "duration": 12}, nil)
	wantStatus(t, rec, http.StatusCreated)
	var created loan.RequestResult
	decode(t, rec, &created)
	loanID := created.LoanID
	if created.Loan == nil || created.Loan.Status != "pending" {
		t.Fatalf("unexpected request result: %+v", created)
	}

	wantErrorCode(t, call(t, e, http.MethodPost, "/loans", borrowerHex, map[string]any{"amount": 500, "duration": 6}, nil),
		http.StatusConflict, "PendingLoanExists")

	var pending []loan.LoanDTO
	rec = call(t, e, http.MethodGet, "/loans/pending", lenderHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &pending)
	if len(pending) != 1 || pending[0].LoanID != loanID {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	wantStatus(t, call(t, e, http.MethodPost, "/loans/"+loanID+"/fund", lenderHex, nil, nil), http.StatusOK)
	wantErrorCode(t, call(t, e, http.MethodPost, "/loans/"+loanID+"/fund", lenderHex, nil, nil),
		http.StatusConflict, "LoanNotFundable")
	if got := dbtest.Balance(t, gdb, lenderHex); !got.Equal(dec("8975")) {
		t.Fatalf("lender balance = %s, want 8975", got)
	}

	var funded []loan.LoanDTO
	rec = call(t, e, http.MethodGet, "/loans/funded-by-me", lenderHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &funded)
	if len(funded) != 1 || funded[0].LenderID != lenderHex {
		t.Fatalf("unexpected funded list: %+v", funded)
	}

	wantErrorCode(t, call(t, e, http.MethodPost, "/loans/"+loanID+"/repay", lenderHex, map[string]any{}, nil),
		http.StatusConflict, "LoanNotRepayable")

	rec = call(t, e, http.MethodPost, "/loans/"+loanID+"/repay", borrowerHex, map[string]any{}, nil)
	wantStatus(t, rec, http.StatusOK)
	var repaid loan.RepayResult
	decode(t, rec, &repaid)
	if repaid.Status != "repaid" || !repaid.RemainingDue.IsZero() {
		t.Fatalf("unexpected repay result: %+v", repaid)
	}

	var mine []loan.LoanDTO
	rec = call(t, e, http.MethodGet, "/loans/mine", borrowerHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &mine)
	if len(mine) != 1 || mine[0].Status != "repaid" {
		t.Fatalf("unexpected mine list: %+v", mine)
	}

	wantErrorCode(t, call(t, e, http.MethodGet, "/loans/"+strings.Repeat("0", 32), borrowerHex, nil, nil),
		http.StatusNotFound, "LoanNotFound")
	wantErrorCode(t, call(t, e, http.MethodPost, "/loans/"+strings.Repeat("0", 32)+"/fund", lenderHex, nil, nil),
		http.StatusNotFound, "LoanNotFound")
	wantErrorCode(t, call(t, e, http.MethodGet, "/loans/"+loanID+"/repayment-plan", borrowerHex, nil, nil),
		http.StatusNotFound, "RepaymentPlanNotFound")
}

func TestRouter_DefaultProducesPlan(t *testing.T) {
	e, gdb := newTestServer(t, nil)
	onboard(t, e, borrowerHex, "borrower")
	onboard(t, e, lenderHex, "lender")

	var created loan.RequestResult
	rec := call(t, e, http.MethodPost, "/loans", borrowerHex, map[string]any{"amount": 1000, "duration": 12}, nil)
	wantStatus(t, rec, http.StatusCreated)
	decode(t, rec, &created)
	wantStatus(t, call(t, e, http.MethodPost, "/loans/"+created.LoanID+"/fund", lenderHex, nil, nil), http.StatusOK)

	// pool holds the two initial contributions
	if got := dbtest.PoolBalance(t, gdb); !got.Equal(dec("50")) {
		t.Fatalf("pool = %s, want 50", got)
	}

	rec = call(t, e, http.MethodPost, "/loans/"+created.LoanID+"/default", borrowerHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	var res loan.DefaultResult
	decode(t, rec, &res)
	if !res.PayoutAmount.Equal(dec("50")) || res.RepaymentPlan == nil {
		t.Fatalf("unexpected default result: %+v", res)
	}

	rec = call(t, e, http.MethodGet, "/loans/"+created.LoanID+"/repayment-plan", lenderHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	var plan struct {
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
		Installments    []any           `json:"installments"`
	}
	decode(t, rec, &plan)
	if !plan.RemainingAmount.Equal(dec("950")) || len(plan.Installments) != 4 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestRouter_BodyErrors(t *testing.T) {
	e, _ := newTestServer(t, nil)
	onboard(t, e, borrowerHex, "borrower")

	req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(`{"amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.HeaderUserID, borrowerHex)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	wantErrorCode(t, rec, http.StatusBadRequest, "BadRequest")

	wantErrorCode(t, call(t, e, http.MethodPost, "/loans", borrowerHex, map[string]any{"amount": 0, "duration": 12}, nil),
		http.StatusUnprocessableEntity, "ValidationError")
	wantErrorCode(t, call(t, e, http.MethodPost, "/loans", borrowerHex, map[string]any{"amount": 99999999, "duration": 12}, nil),
		http.StatusUnprocessableEntity, "ValidationError")
}

func TestRouter_ContributionReplayedByIdempotencyKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	e, gdb := newTestServer(t, rdb)
	hdr := func(key string) map[string]string {
		return map[string]string{
			middleware.HeaderIdempotencyKey: key,
			middleware.HeaderRequestAt:      time.Now().UTC().Format(time.RFC3339),
		}
	}
	wantStatus(t, call(t, e, http.MethodPost, "/users/sign-in", lenderHex, map[string]string{}, hdr(strings.Repeat("1", 32))), http.StatusCreated)
	wantStatus(t, call(t, e, http.MethodPost, "/users/me/role", lenderHex, map[string]string{"role": "lender"}, hdr(strings.Repeat("2", 32))), http.StatusOK)

	body := map[string]string{"amount": "100"}
	first := call(t, e, http.MethodPost, "/insurance-pool/contributions", lenderHex, body, hdr(strings.Repeat("3", 32)))
	wantStatus(t, first, http.StatusCreated)
	second := call(t, e, http.MethodPost, "/insurance-pool/contributions", lenderHex, body, hdr(strings.Repeat("3", 32)))
	wantStatus(t, second, http.StatusCreated)
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay mismatch: %s vs %s", first.Body.String(), second.Body.String())
	}
	if got := dbtest.PoolBalance(t, gdb); !got.Equal(dec("125")) {
		t.Fatalf("pool = %s, want 125 (one contribution plus initial)", got)
	}

	wantStatus(t, call(t, e, http.MethodPost, "/insurance-pool/contributions", lenderHex, body, nil), http.StatusBadRequest)

	rec := call(t, e, http.MethodGet, "/insurance-pool", lenderHex, nil, nil)
	wantStatus(t, rec, http.StatusOK)
	var s insurance.SummaryDTO
	decode(t, rec, &s)
	if !s.UserContribution.Equal(dec("125")) {
		t.Fatalf("user contribution = %s, want 125", s.UserContribution)
	}
}
