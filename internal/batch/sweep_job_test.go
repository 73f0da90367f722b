package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/batch"
	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/domain/schedule"
	"loan-servicing/internal/event"
	"loan-servicing/internal/pkg/apperrors"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) GetSchedule(ctx context.Context, loanID string) (*loan.LoanSchedule, error) {
	args := m.Called(ctx, loanID)
	if ls, ok := args.Get(0).(*loan.LoanSchedule); ok {
		return ls, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleService) RefreshSchedule(ctx context.Context, loanID string) (*loan.LoanSchedule, error) {
	args := m.Called(ctx, loanID)
	if ls, ok := args.Get(0).(*loan.LoanSchedule); ok {
		return ls, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleService) Quote(principal, annualRatePercent decimal.Decimal, termMonths int) (*loan.Quote, error) {
	args := m.Called(principal, annualRatePercent, termMonths)
	if q, ok := args.Get(0).(*loan.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleService) ListSchedulableLoanIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) LoadSnapshot(ctx context.Context, loanID string) ([]loan.InstallmentSnapshot, error) {
	args := m.Called(ctx, loanID)
	if s, ok := args.Get(0).([]loan.InstallmentSnapshot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, loanID string, entries []loan.InstallmentSnapshot, transitions []loan.StatusTransition) error {
	return m.Called(ctx, loanID, entries, transitions).Error(0)
}

func (m *MockSnapshotRepository) ListTransitions(ctx context.Context, loanID string, limit int) ([]loan.StatusTransition, error) {
	args := m.Called(ctx, loanID, limit)
	if t, ok := args.Get(0).([]loan.StatusTransition); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishInstallmentStatusChanged(ctx context.Context, e event.InstallmentStatusChangedEvent) error {
	return m.Called(ctx, e).Error(0)
}

var sweepTime = time.Date(2026, 6, 10, 1, 0, 0, 0, time.UTC)

func loanSchedule(loanID string, statuses ...schedule.Status) *loan.LoanSchedule {
	installments := make([]schedule.Installment, len(statuses))
	for i, s := range statuses {
		installments[i] = schedule.Installment{
			PaymentNumber: i + 1,
			Amount:        decimal.NewFromInt(100),
			DueDate:       sweepTime.AddDate(0, i-2, 0),
			Status:        s,
		}
	}
	return &loan.LoanSchedule{
		Loan:         &loan.Loan{ID: loanID, Status: loan.StatusActive},
		Installments: installments,
		Source:       loan.SourceBackend,
		AsOf:         sweepTime,
	}
}

func snapshotOf(loanID string, statuses ...schedule.Status) []loan.InstallmentSnapshot {
	return loan.SnapshotOf(loanSchedule(loanID, statuses...))
}

type sweepMocks struct {
	svc  *MockScheduleService
	repo *MockSnapshotRepository
	pub  *MockPublisher
	job  *batch.StatusSweepJob
}

func newSweep(workers int) sweepMocks {
	m := sweepMocks{
		svc:  new(MockScheduleService),
		repo: new(MockSnapshotRepository),
		pub:  new(MockPublisher),
	}
	m.job = batch.NewStatusSweepJob(m.svc, m.repo, m.pub, workers, discardLogger)
	return m
}

func TestStatusSweepJob_Run_PublishesTransitions(t *testing.T) {
	ctx := context.Background()
	m := newSweep(2)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"1", "2"}, nil)

	m.svc.On("RefreshSchedule", ctx, "1").Return(loanSchedule("1", schedule.StatusPaid, schedule.StatusMissed, schedule.StatusPending), nil)
	m.repo.On("LoadSnapshot", ctx, "1").Return(snapshotOf("1", schedule.StatusPaid, schedule.StatusOverdue, schedule.StatusPending), nil)
	m.repo.On("SaveSnapshot", ctx, "1", mock.Anything, mock.MatchedBy(func(ts []loan.StatusTransition) bool {
		return len(ts) == 1 && ts[0].PaymentNumber == 2 && ts[0].To == schedule.StatusMissed && ts[0].Legal
	})).Return(nil)
	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.MatchedBy(func(e event.InstallmentStatusChangedEvent) bool {
		return e.LoanID == "1" && e.OldStatus == "overdue" && e.NewStatus == "missed" && e.RoutingKey() == "installment.status.missed"
	})).Return(nil).Once()

	m.svc.On("RefreshSchedule", ctx, "2").Return(loanSchedule("2", schedule.StatusPending), nil)
	m.repo.On("LoadSnapshot", ctx, "2").Return(nil, nil)
	m.repo.On("SaveSnapshot", ctx, "2", mock.MatchedBy(func(es []loan.InstallmentSnapshot) bool {
		return len(es) == 1 && es[0].LoanID == "2"
	}), []loan.StatusTransition(nil)).Return(nil)

	err := m.job.Run(ctx)
	require.NoError(t, err)

	m.svc.AssertExpectations(t)
	m.repo.AssertExpectations(t)
	m.pub.AssertExpectations(t)
}

func TestStatusSweepJob_Run_IllegalTransitionIsStoredAndPublished(t *testing.T) {
	ctx := context.Background()
	m := newSweep(1)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"9"}, nil)
	m.svc.On("RefreshSchedule", ctx, "9").Return(loanSchedule("9", schedule.StatusPending), nil)
	m.repo.On("LoadSnapshot", ctx, "9").Return(snapshotOf("9", schedule.StatusPaid), nil)
	m.repo.On("SaveSnapshot", ctx, "9", mock.Anything, mock.MatchedBy(func(ts []loan.StatusTransition) bool {
		return len(ts) == 1 && !ts[0].Legal
	})).Return(nil)
	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.MatchedBy(func(e event.InstallmentStatusChangedEvent) bool {
		return !e.Legal && e.OldStatus == "paid" && e.NewStatus == "pending"
	})).Return(nil)

	require.NoError(t, m.job.Run(ctx))
	m.pub.AssertExpectations(t)
}

func TestStatusSweepJob_Run_ListFails(t *testing.T) {
	ctx := context.Background()
	m := newSweep(1)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return(nil, apperrors.ErrUpstream)

	err := m.job.Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	m.svc.AssertNotCalled(t, "RefreshSchedule", mock.Anything, mock.Anything)
}

func TestStatusSweepJob_Run_SkipsLoansThatLeftActiveSet(t *testing.T) {
	ctx := context.Background()
	m := newSweep(2)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"gone", "done"}, nil)
	m.svc.On("RefreshSchedule", ctx, "gone").Return(nil, apperrors.ErrNotFound)
	m.svc.On("RefreshSchedule", ctx, "done").Return(nil, apperrors.ErrNotSchedulable)

	require.NoError(t, m.job.Run(ctx))
	m.repo.AssertNotCalled(t, "LoadSnapshot", mock.Anything, mock.Anything)
}

func TestStatusSweepJob_Run_CountsErrors(t *testing.T) {
	ctx := context.Background()
	m := newSweep(3)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"a", "b", "c"}, nil)

	m.svc.On("RefreshSchedule", ctx, "a").Return(nil, apperrors.ErrUpstream)

	m.svc.On("RefreshSchedule", ctx, "b").Return(loanSchedule("b", schedule.StatusPending), nil)
	m.repo.On("LoadSnapshot", ctx, "b").Return(nil, apperrors.ErrDatabase)

	m.svc.On("RefreshSchedule", ctx, "c").Return(loanSchedule("c", schedule.StatusOverdue), nil)
	m.repo.On("LoadSnapshot", ctx, "c").Return(snapshotOf("c", schedule.StatusPending), nil)
	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.Anything).Return(errors.New("channel closed"))

	err := m.job.Run(ctx)
	assert.EqualError(t, err, "sweep completed with 3 errors")
	m.repo.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusSweepJob_Run_RedeliversAfterPublishFailure(t *testing.T) {
	ctx := context.Background()
	m := newSweep(1)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"7"}, nil)
	m.svc.On("RefreshSchedule", ctx, "7").Return(loanSchedule("7", schedule.StatusOverdue, schedule.StatusOverdue), nil)
	// Nothing was saved after the failed run, so the second run still sees the old snapshot.
	m.repo.On("LoadSnapshot", ctx, "7").Return(snapshotOf("7", schedule.StatusPending, schedule.StatusPending), nil)

	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.MatchedBy(func(e event.InstallmentStatusChangedEvent) bool {
		return e.PaymentNumber == 1
	})).Return(nil).Once()
	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.MatchedBy(func(e event.InstallmentStatusChangedEvent) bool {
		return e.PaymentNumber == 2
	})).Return(errors.New("channel closed")).Once()

	assert.EqualError(t, m.job.Run(ctx), "sweep completed with 1 errors")
	m.repo.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.Anything).Return(nil).Twice()
	m.repo.On("SaveSnapshot", ctx, "7", mock.Anything, mock.MatchedBy(func(ts []loan.StatusTransition) bool {
		return len(ts) == 2
	})).Return(nil).Once()

	require.NoError(t, m.job.Run(ctx))
	m.repo.AssertExpectations(t)
	m.pub.AssertNumberOfCalls(t, "PublishInstallmentStatusChanged", 4)
}

func TestStatusSweepJob_Run_SaveFailureAfterPublish(t *testing.T) {
	ctx := context.Background()
	m := newSweep(1)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"8"}, nil)
	m.svc.On("RefreshSchedule", ctx, "8").Return(loanSchedule("8", schedule.StatusOverdue), nil)
	m.repo.On("LoadSnapshot", ctx, "8").Return(snapshotOf("8", schedule.StatusPending), nil)
	m.pub.On("PublishInstallmentStatusChanged", ctx, mock.Anything).Return(nil).Once()
	m.repo.On("SaveSnapshot", ctx, "8", mock.Anything, mock.Anything).Return(apperrors.ErrDatabase).Once()

	assert.EqualError(t, m.job.Run(ctx), "sweep completed with 1 errors")
	m.pub.AssertExpectations(t)
}

func TestStatusSweepJob_Run_NoLoans(t *testing.T) {
	ctx := context.Background()
	m := newSweep(4)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{}, nil)
	assert.NoError(t, m.job.Run(ctx))
}

func TestStatusSweepJob_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newSweep(1)

	m.svc.On("ListSchedulableLoanIDs", ctx).Return([]string{"1"}, nil)
	m.svc.On("RefreshSchedule", ctx, "1").Return(nil, context.Canceled).Maybe()

	err := m.job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStatusSweepJob_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() {
		batch.NewStatusSweepJob(nil, new(MockSnapshotRepository), new(MockPublisher), 1, discardLogger)
	})
}
