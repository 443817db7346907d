package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"rental-inventory-backend/internal/model"
)

// Shortage is one no-capacity alert: allocation could not find a free device
// for Count reservations of Category inside the queried window.
type Shortage struct {
	Category string
	Count    int
	Start    time.Time
	End      time.Time
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans shortage alerts out to subscribed staff browsers.
type WorkerPool struct {
	size    int
	jobs    chan Shortage
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Shortage, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("alert worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.sendShortageAlerts(ctx, job)
		case <-ctx.Done():
			log.Printf("alert worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a shortage alert. It never blocks the request path: when
// the queue is full the alert is dropped with a log line.
func (wp *WorkerPool) Dispatch(job Shortage) {
	select {
	case wp.jobs <- job:
	default:
		log.Printf("alert queue full, dropping shortage alert for category %s", job.Category)
	}
}

// ShortageDetected implements the pipeline's Alerter interface.
func (wp *WorkerPool) ShortageDetected(category string, count int, start, end time.Time) {
	wp.Dispatch(Shortage{Category: category, Count: count, Start: start, End: end})
}

func (wp *WorkerPool) sendShortageAlerts(ctx context.Context, job Shortage) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("error fetching push subscriptions: %v", err)
		return
	}

	message := fmt.Sprintf("%d reservation(s) in category %s cannot be assigned a device for %s to %s",
		job.Count, job.Category,
		job.Start.Format("2006-01-02"), job.End.Format("2006-01-02"))

	sent := 0
	for _, sub := range subscriptions {
		if !subscriptionWants(sub, job.Category) {
			continue
		}
		wp.sendAlert(ctx, sub, []byte(message))
		sent++
	}
	if sent > 0 {
		log.Printf("sent %d shortage alerts for category %s", sent, job.Category)
	}
}

// subscriptionWants reports whether a subscription asked for this category.
// An empty category list subscribes to everything.
func subscriptionWants(sub model.PushSubscription, category string) bool {
	if strings.TrimSpace(sub.Categories) == "" {
		return true
	}
	for _, c := range strings.Split(sub.Categories, ",") {
		if strings.TrimSpace(c) == category {
			return true
		}
	}
	return false
}

func (wp *WorkerPool) sendAlert(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending alert to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Push services answer 410 once a subscription expires.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
