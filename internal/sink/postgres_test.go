package sink

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

func TestPostgresSinkInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewPostgresSinkWithPool(mock, "quotes", zap.NewNop())
	require.NoError(t, err)

	author := "maria"
	rec := miner.Record{
		Country:   "CL",
		Topic:     "clases de programación",
		QuoteType: "comment",
		Quote:     "una cita",
		PostTitle: "un título",
		Subreddit: "chile",
		Score:     15,
		URL:       "https://www.reddit.com/r/chile/comments/abc/x/#c1",
		CreatedAt: "2023-11-14T22:13:20Z",
		Lang:      "es",
		Author:    &author,
	}

	mock.ExpectExec("INSERT INTO quotes").
		WithArgs(
			rec.Country,
			rec.Topic,
			rec.QuoteType,
			rec.Quote,
			rec.QuoteEN,
			rec.PostTitle,
			rec.PostTitleEN,
			rec.Subreddit,
			rec.Score,
			rec.URL,
			rec.CreatedAt,
			rec.Lang,
			rec.Author,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Append(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkValidation(t *testing.T) {
	t.Parallel()

	_, err := NewPostgresSinkWithPool(nil, "quotes", zap.NewNop())
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresSinkWithPool(mock, "quotes; drop table", zap.NewNop())
	require.Error(t, err)

	s, err := NewPostgresSinkWithPool(mock, "", zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "quotes", s.table)
}
