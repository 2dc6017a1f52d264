package settlement_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/metrics"
	"dorm-delivery/internal/service/settlement"
	testlog "dorm-delivery/internal/testutil"
)

func failedEvent(payment domain.PaymentStatus) domain.TaskEvent {
	return domain.TaskEvent{TaskID: 5, Action: "fail", Status: domain.StatusFailed, PaymentStatus: payment}
}

func TestProcessor_Handle_FailedHeld_Refunds(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := NewMockRefunder(ctrl)
	refunds := metrics.NewSettlementRefundsTotal()
	p := settlement.NewProcessor(r, testlog.New().Logger(), refunds)

	r.EXPECT().
		RefundPayment(gomock.Any(), domain.SystemCaller, int64(5)).
		Return(domain.Task{ID: 5, PaymentStatus: domain.PaymentRefunded}, nil)

	require.NoError(t, p.Handle(context.Background(), failedEvent(domain.PaymentHeld)))
	require.Equal(t, 1.0, testutil.ToFloat64(refunds.WithLabelValues("event")))
}

func TestProcessor_Handle_IgnoresUnpaidAndOtherActions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := NewMockRefunder(ctrl)
	p := settlement.NewProcessor(r, testlog.New().Logger(), nil)

	ctx := context.Background()
	require.NoError(t, p.Handle(ctx, failedEvent(domain.PaymentUnpaid)))
	require.NoError(t, p.Handle(ctx, domain.TaskEvent{TaskID: 5, Action: "accept", Status: domain.StatusAccepted}))
	require.NoError(t, p.Handle(ctx, domain.TaskEvent{TaskID: 5, Action: "unknown"}))
}

func TestProcessor_Handle_AlreadySettledIsNotAnError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := NewMockRefunder(ctrl)
	p := settlement.NewProcessor(r, testlog.New().Logger(), nil)

	noHeld := &apperr.PaymentError{TaskID: 5, Op: "refund", Reason: apperr.ErrNoHeldFunds}
	r.EXPECT().RefundPayment(gomock.Any(), gomock.Any(), int64(5)).Return(domain.Task{}, noHeld)
	r.EXPECT().RefundPayment(gomock.Any(), gomock.Any(), int64(5)).Return(domain.Task{}, fmt.Errorf("task 5: %w", apperr.ErrNotFound))

	require.NoError(t, p.Handle(context.Background(), failedEvent(domain.PaymentHeld)))
	require.NoError(t, p.Handle(context.Background(), failedEvent(domain.PaymentHeld)))
}

func TestProcessor_Handle_PropagatesOtherErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := NewMockRefunder(ctrl)
	p := settlement.NewProcessor(r, testlog.New().Logger(), nil)

	wantErr := errors.New("gateway down")
	r.EXPECT().RefundPayment(gomock.Any(), gomock.Any(), int64(5)).Return(domain.Task{}, wantErr)

	err := p.Handle(context.Background(), failedEvent(domain.PaymentHeld))
	require.ErrorIs(t, err, wantErr)
}
