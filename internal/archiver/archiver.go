// Package archiver периодически архивирует тендеры с истекшим дедлайном.
package archiver

import (
	"context"
	"log"
	"time"

	"tenderhub/models"
)

// Store — срез хранилища, нужный архивации.
type Store interface {
	GetExpiredPublishedTenders(ctx context.Context, now time.Time) ([]models.Tender, error)
	UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) (bool, error)
}

type Archiver struct {
	store    Store
	interval time.Duration
}

func New(store Store, interval time.Duration) *Archiver {
	return &Archiver{store: store, interval: interval}
}

// Run запускает фоновую архивацию: один проход сразу при старте,
// далее по тикеру. Завершается при отмене контекста.
// Ошибки прохода логируются и не останавливают следующие тики.
func (a *Archiver) Run(ctx context.Context) {
	log.Printf("archiver: running every %v", a.interval)
	a.sweep(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Print("archiver: stopped")
			return
		case <-ticker.C:
			a.sweep(ctx)
		}
	}
}

func (a *Archiver) sweep(ctx context.Context) {
	archived, errs, err := a.ArchiveExpiredTenders(ctx)
	if err != nil {
		log.Printf("archiver: sweep failed: %v", err)
		return
	}
	if archived > 0 || errs > 0 {
		log.Printf("archiver: archived %d tenders, %d errors", archived, errs)
	}
}

// ArchiveExpiredTenders переводит в Archived опубликованные тендеры,
// дедлайн которых прошел. Каждый тендер архивируется отдельно:
// ошибка на одном учитывается в счетчике и не прерывает остальные.
func (a *Archiver) ArchiveExpiredTenders(ctx context.Context) (archived, errs int, err error) {
	expired, err := a.store.GetExpiredPublishedTenders(ctx, time.Now())
	if err != nil {
		return 0, 0, err
	}

	for _, t := range expired {
		updated, err := a.store.UpdateTenderStatus(ctx, t.ID, models.TenderArchived)
		if err != nil || !updated {
			errs++
			log.Printf("archiver: failed to archive tender %d: %v", t.ID, err)
			continue
		}
		archived++
	}
	return archived, errs, nil
}
