package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

type stubSource struct {
	stats domain.Stats
	err   error
	calls int
}

func (s *stubSource) Stats(context.Context) (domain.Stats, error) {
	s.calls++
	return s.stats, s.err
}

func TestNewService_ZeroTimeoutUsesDefault(t *testing.T) {
	t.Parallel()

	s := NewService(&stubSource{}, 0)
	require.Equal(t, 3*time.Second, s.operationTimeout)
}

func TestService_Stats(t *testing.T) {
	t.Parallel()

	want := domain.Stats{Users: 4, Total: 3, Active: 1, Pending: 2, HeldPayments: 1, HeldAmount: 500}
	src := &stubSource{stats: want}
	s := NewService(src, time.Second)

	got, err := s.Stats(context.Background(), domain.Caller{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, want, got)

	for _, role := range []domain.Role{domain.RoleCustomer, domain.RoleDelivery} {
		_, err := s.Stats(context.Background(), domain.Caller{UserID: 2, Role: role})
		require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	}
	require.Equal(t, 1, src.calls)
}

func TestService_StatsSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := NewService(&stubSource{err: boom}, time.Second)

	_, err := s.Stats(context.Background(), domain.Caller{UserID: 1, Role: domain.RoleAdmin})
	require.ErrorIs(t, err, boom)
}
