package archiver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tenderhub/models"
)

type fakeStore struct {
	expired   []models.Tender
	listErr   error
	updateErr map[int]error
	archived  []int
	statuses  []models.TenderStatus
}

func (f *fakeStore) GetExpiredPublishedTenders(ctx context.Context, now time.Time) ([]models.Tender, error) {
	return f.expired, f.listErr
}

func (f *fakeStore) UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) (bool, error) {
	if err := f.updateErr[id]; err != nil {
		return false, err
	}
	f.archived = append(f.archived, id)
	f.statuses = append(f.statuses, status)
	return true, nil
}

func TestArchiveExpiredTenders(t *testing.T) {
	store := &fakeStore{
		expired: []models.Tender{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	a := New(store, time.Hour)

	archived, errs, err := a.ArchiveExpiredTenders(context.Background())

	require.NoError(t, err)
	require.Equal(t, 3, archived)
	require.Equal(t, 0, errs)
	require.Equal(t, []int{1, 2, 3}, store.archived)
	for _, s := range store.statuses {
		require.Equal(t, models.TenderArchived, s)
	}
}

// Ошибка на одном тендере не прерывает архивацию остальных.
func TestArchiveExpiredTendersPartialFailure(t *testing.T) {
	store := &fakeStore{
		expired:   []models.Tender{{ID: 1}, {ID: 2}, {ID: 3}},
		updateErr: map[int]error{2: errors.New("deadlock")},
	}
	a := New(store, time.Hour)

	archived, errs, err := a.ArchiveExpiredTenders(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, archived)
	require.Equal(t, 1, errs)
	require.Equal(t, []int{1, 3}, store.archived)
}

func TestArchiveExpiredTendersListError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db down")}
	a := New(store, time.Hour)

	archived, errs, err := a.ArchiveExpiredTenders(context.Background())

	require.Error(t, err)
	require.Equal(t, 0, archived)
	require.Equal(t, 0, errs)
}

func TestArchiveExpiredTendersNothingToDo(t *testing.T) {
	store := &fakeStore{}
	a := New(store, time.Hour)

	archived, errs, err := a.ArchiveExpiredTenders(context.Background())

	require.NoError(t, err)
	require.Equal(t, 0, archived)
	require.Equal(t, 0, errs)
}

// Run делает первый проход сразу и останавливается по отмене контекста.
func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{expired: []models.Tender{{ID: 1}}}
	a := New(store, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("archiver did not stop after context cancellation")
	}
	require.NotEmpty(t, store.archived)
}
