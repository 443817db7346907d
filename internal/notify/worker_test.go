package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rental-inventory-backend/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func shortageFixture() Shortage {
	return Shortage{
		Category: "GP13",
		Count:    2,
		Start:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubscriptionWants(t *testing.T) {
	assert.True(t, subscriptionWants(model.PushSubscription{Categories: ""}, "GP13"))
	assert.True(t, subscriptionWants(model.PushSubscription{Categories: "GP13,MAX1"}, "GP13"))
	assert.True(t, subscriptionWants(model.PushSubscription{Categories: " GP13 , MAX1 "}, "MAX1"))
	assert.False(t, subscriptionWants(model.PushSubscription{Categories: "MAX1"}, "GP13"))
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(shortageFixture())

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "GP13", job.Category)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DropsWhenFull(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	// No workers running; overfill the queue. Dispatch must not block the
	// caller, extra jobs are dropped.
	for i := 0; i < cap(wp.jobs)+5; i++ {
		wp.Dispatch(shortageFixture())
	}
	assert.Len(t, wp.jobs, cap(wp.jobs))
}

func TestWorkerPool_SendsShortageAlert(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends to a matching subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t,
					"2 reservation(s) in category GP13 cannot be assigned a device for 2024-02-01 to 2024-02-06",
					string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "categories", "created_at"}).
				AddRow("https://example.com/push", "test_p256dh", "test_auth", "", time.Now()))

		wp.Dispatch(shortageFixture())
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "categories", "created_at"}).
				AddRow("https://example.com/expired", "test_p256dh", "test_auth", "", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch(shortageFixture())

		// A short sleep to allow the worker to process the job.
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips non-matching categories", func(t *testing.T) {
		sent := false
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				sent = true
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "categories", "created_at"}).
				AddRow("https://example.com/other", "test_p256dh", "test_auth", "MAX1", time.Now()))

		wp.Dispatch(shortageFixture())
		time.Sleep(100 * time.Millisecond)

		assert.False(t, sent, "subscription for another category must not be alerted")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
