package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"marlin/internal/broker"
	"marlin/internal/metrics"
	"marlin/internal/ratelimit"
	"marlin/internal/retry"
	"marlin/internal/risk"
	storemodel "marlin/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) SubmitOrder(ctx context.Context, order broker.Order, clientOrderID string) (string, error) {
	args := m.Called(ctx, order, clientOrderID)
	return args.String(0), args.Error(1)
}

func (m *MockBroker) CloseAllPositions(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBroker) GetAccount(ctx context.Context) (broker.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).(broker.Account), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Lookup(ctx context.Context, key string) (*storemodel.SubmissionModel, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storemodel.SubmissionModel), args.Error(1)
}

func (m *MockLedger) RecordPending(ctx context.Context, key, symbol, side string, qty int) error {
	return m.Called(ctx, key, symbol, side, qty).Error(0)
}

func (m *MockLedger) MarkSubmitted(ctx context.Context, key, brokerOrderID string) error {
	return m.Called(ctx, key, brokerOrderID).Error(0)
}

func (m *MockLedger) MarkFailed(ctx context.Context, key, message string) error {
	return m.Called(ctx, key, message).Error(0)
}

var testRiskCfg = risk.Config{
	BaseRisk:     0.0025,
	CMin:         0.55,
	DailyMaxLoss: 0.03,
	DrawdownMax:  0.1,
}

func testOrder() broker.Order {
	return broker.BuildBracketOrder("AAPL", 100, 50, 48.2, 55.58)
}

func fastRetry() retry.Options {
	return retry.Options{Retries: 2, Backoff: time.Millisecond}
}

func newTestExecutor(b BrokerAPI, ledger Ledger) *Executor {
	return New(testRiskCfg, ratelimit.NewBucket(6000), b, ledger, metrics.New(), fastRetry())
}

func TestPlaceOrderSubmits(t *testing.T) {
	mb := new(MockBroker)
	order := testOrder()
	key := broker.BuildIdempotencyKey(order)
	mb.On("SubmitOrder", mock.Anything, mock.Anything, key).Return("broker-1", nil).Once()

	res := newTestExecutor(mb, nil).PlaceOrder(context.Background(), order, Portfolio{})
	assert.Equal(t, StatusSubmitted, res.Status)
	assert.Equal(t, "broker-1", res.OrderID)
	mb.AssertExpectations(t)
}

func TestPlaceOrderBreakerVeto(t *testing.T) {
	mb := new(MockBroker) // no expectations: the broker must not be touched

	res := newTestExecutor(mb, nil).PlaceOrder(context.Background(), testOrder(), Portfolio{DailyLoss: -0.05})
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, "daily loss limit exceeded", res.Message)
	mb.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything, mock.Anything)

	res = newTestExecutor(mb, nil).PlaceOrder(context.Background(), testOrder(), Portfolio{Drawdown: 0.2})
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, "drawdown limit exceeded", res.Message)
}

func TestPlaceOrderRetriesTransient(t *testing.T) {
	mb := new(MockBroker)
	mb.On("SubmitOrder", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("502 bad gateway")).Twice()
	mb.On("SubmitOrder", mock.Anything, mock.Anything, mock.Anything).
		Return("broker-2", nil).Once()

	res := newTestExecutor(mb, nil).PlaceOrder(context.Background(), testOrder(), Portfolio{})
	assert.Equal(t, StatusSubmitted, res.Status)
	assert.Equal(t, "broker-2", res.OrderID)
	mb.AssertExpectations(t)
}

func TestPlaceOrderExhaustedRetries(t *testing.T) {
	mb := new(MockBroker)
	mb.On("SubmitOrder", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("connection refused"))

	res := newTestExecutor(mb, nil).PlaceOrder(context.Background(), testOrder(), Portfolio{})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "connection refused")
	mb.AssertNumberOfCalls(t, "SubmitOrder", 3) // retries+1
}

func TestPlaceOrderPermanentRejectionNotRetried(t *testing.T) {
	mb := new(MockBroker)
	mb.On("SubmitOrder", mock.Anything, mock.Anything, mock.Anything).
		Return("", retry.Permanent(errors.New("insufficient buying power")))

	res := newTestExecutor(mb, nil).PlaceOrder(context.Background(), testOrder(), Portfolio{})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "insufficient buying power")
	mb.AssertNumberOfCalls(t, "SubmitOrder", 1)
}

func TestPlaceOrderLedgerDedup(t *testing.T) {
	mb := new(MockBroker)
	ml := new(MockLedger)
	order := testOrder()
	key := broker.BuildIdempotencyKey(order)
	ml.On("Lookup", mock.Anything, key).Return(&storemodel.SubmissionModel{
		IdempotencyKey: key,
		BrokerOrderID:  "broker-old",
		Status:         storemodel.SubmissionStatusSubmitted,
	}, nil).Once()

	res := newTestExecutor(mb, ml).PlaceOrder(context.Background(), order, Portfolio{})
	assert.Equal(t, StatusSubmitted, res.Status)
	assert.Equal(t, "broker-old", res.OrderID)
	mb.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything, mock.Anything)
	ml.AssertExpectations(t)
}

func TestPlaceOrderRecordsOutcome(t *testing.T) {
	mb := new(MockBroker)
	ml := new(MockLedger)
	order := testOrder()
	key := broker.BuildIdempotencyKey(order)

	ml.On("Lookup", mock.Anything, key).Return(nil, nil).Once()
	ml.On("RecordPending", mock.Anything, key, "AAPL", "buy", 100).Return(nil).Once()
	ml.On("MarkSubmitted", mock.Anything, key, "broker-3").Return(nil).Once()
	mb.On("SubmitOrder", mock.Anything, mock.Anything, key).Return("broker-3", nil).Once()

	res := newTestExecutor(mb, ml).PlaceOrder(context.Background(), order, Portfolio{})
	require.Equal(t, StatusSubmitted, res.Status)
	ml.AssertExpectations(t)
}

func TestFetchAccount(t *testing.T) {
	mb := new(MockBroker)
	mb.On("GetAccount", mock.Anything).Return(broker.Account{Equity: 100000}, nil).Once()

	acct, err := newTestExecutor(mb, nil).FetchAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100000.0, acct.Equity)
	mb.AssertExpectations(t)
}

func TestFetchAccountDrawsFromRateBudget(t *testing.T) {
	// Account reads share the bucket with submissions; with the budget spent
	// and the wait abandoned, the broker must never be reached.
	mb := new(MockBroker)
	bucket := ratelimit.NewBucket(60)
	for i := 0; i < 60; i++ {
		require.True(t, bucket.Acquire().Allowed)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(testRiskCfg, bucket, mb, nil, metrics.New(), fastRetry())
	_, err := e.FetchAccount(ctx)
	require.Error(t, err)
	mb.AssertNotCalled(t, "GetAccount", mock.Anything)
}

func TestFetchAccountRetriesTransient(t *testing.T) {
	mb := new(MockBroker)
	mb.On("GetAccount", mock.Anything).
		Return(broker.Account{}, errors.New("503 unavailable")).Once()
	mb.On("GetAccount", mock.Anything).
		Return(broker.Account{Equity: 50000}, nil).Once()

	acct, err := newTestExecutor(mb, nil).FetchAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50000.0, acct.Equity)
	mb.AssertExpectations(t)
}

func TestFlattenAll(t *testing.T) {
	mb := new(MockBroker)
	mb.On("CloseAllPositions", mock.Anything).Return(nil).Once()

	res := newTestExecutor(mb, nil).FlattenAll(context.Background())
	assert.Equal(t, StatusSubmitted, res.Status)
	assert.Equal(t, "flattened", res.Message)
	mb.AssertExpectations(t)
}

func TestFlattenAllError(t *testing.T) {
	mb := new(MockBroker)
	mb.On("CloseAllPositions", mock.Anything).Return(errors.New("timeout"))

	res := newTestExecutor(mb, nil).FlattenAll(context.Background())
	assert.Equal(t, StatusError, res.Status)
	mb.AssertNumberOfCalls(t, "CloseAllPositions", 3)
}

func TestFlattenAllRunsUnderTrippedBreaker(t *testing.T) {
	// The halt action itself must not be vetoed by the breaker that fired it.
	mb := new(MockBroker)
	mb.On("CloseAllPositions", mock.Anything).Return(nil).Once()

	res := newTestExecutor(mb, nil).FlattenAll(context.Background())
	assert.Equal(t, StatusSubmitted, res.Status)
}
