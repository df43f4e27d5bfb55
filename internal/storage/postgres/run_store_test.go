package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

func TestRecordRunInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_runs")
	require.NoError(t, err)

	started := time.Unix(1700000000, 0).UTC()
	rec := scrape.RunRecord{
		ID:        "uuid-v4",
		BaseURL:   "https://shop.example/catalog/",
		Pages:     3,
		Accepted:  12,
		StartedAt: started,
		Duration:  2500 * time.Millisecond,
	}

	mock.ExpectExec("INSERT INTO scrape_runs").
		WithArgs(
			rec.ID,
			rec.BaseURL,
			rec.Pages,
			rec.Accepted,
			started,
			int64(2500),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.RecordRun(context.Background(), rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunRequiresID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "")
	require.NoError(t, err)

	err = store.RecordRun(context.Background(), scrape.RunRecord{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunPropagatesExecError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_runs")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO scrape_runs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err = store.RecordRun(context.Background(), scrape.RunRecord{ID: "uuid-v4"})
	require.ErrorContains(t, err, "insert scrape run")
}

func TestNewRunStoreWithPoolValidatesInput(t *testing.T) {
	t.Parallel()

	_, err := NewRunStoreWithPool(nil, "scrape_runs")
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewRunStoreWithPool(mock, "bad-table;drop")
	require.Error(t, err)
}
