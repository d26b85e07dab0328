package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/metrics"
	"hotel-console-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Subscriptions is the part of the store the pool reads and prunes.
type Subscriptions interface {
	SubscribersFor(ctx context.Context, vehicleNumber string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Message is the JSON payload delivered to the browser service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

// WorkerPool manages a pool of workers for sending exit notifications.
type WorkerPool struct {
	size     int
	jobs     chan model.ExitEvent
	subs     Subscriptions
	webpush  *webpush.Options
	sender   NotificationSender
	currency string

	mu   sync.Mutex
	done <-chan struct{}
}

// queuePerWorker sets the job buffer relative to the pool size.
const queuePerWorker = 32

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs Subscriptions, webpushOptions *webpush.Options, currency string) *WorkerPool {
	return &WorkerPool{
		size:     size,
		jobs:     make(chan model.ExitEvent, size*queuePerWorker), // Buffered channel
		subs:     subs,
		webpush:  webpushOptions,
		sender:   &WebPushSender{}, // Use the real sender by default
		currency: currency,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.mu.Lock()
	wp.done = ctx.Done()
	wp.mu.Unlock()
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := logger.Get(ctx)
	log.Debugf("Worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			log.Debugf("Worker %d processing exit of %s", id, ev.VehicleNumber)
			wp.sendNotificationsForExit(ctx, ev)
		case <-ctx.Done():
			log.Debugf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an exit for the workers. It never blocks: when the queue
// is full, or the pool has stopped, the exit is dropped and false returned.
func (wp *WorkerPool) Dispatch(ctx context.Context, ev model.ExitEvent) bool {
	select {
	case <-wp.stopped():
	default:
		select {
		case wp.jobs <- ev:
			return true
		default:
		}
	}
	metrics.NotificationsSent.WithLabelValues("dropped").Inc()
	logger.Get(ctx).Warnf("Notification queue unavailable, dropping exit of %s", ev.VehicleNumber)
	return false
}

func (wp *WorkerPool) stopped() <-chan struct{} {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.done
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.ExitEvent {
	return wp.jobs
}

// NewMessage builds the notification shown when a vehicle leaves.
func NewMessage(ev model.ExitEvent, currency string) Message {
	body := "Vehicle " + ev.VehicleNumber
	if ev.GuestRoom != "" {
		body += " (room " + ev.GuestRoom + ")"
	}
	body += " has exited."
	if ev.TotalAmount != nil {
		body += fmt.Sprintf(" Charged %s %s.", currency, logfilter.FormatAmount(*ev.TotalAmount))
	}
	return Message{Title: "Vehicle exited", Body: body, Tag: "exit-" + ev.ActivityID}
}

func (wp *WorkerPool) sendNotificationsForExit(ctx context.Context, ev model.ExitEvent) {
	log := logger.Get(ctx)
	subscriptions, err := wp.subs.SubscribersFor(ctx, ev.VehicleNumber)
	if err != nil {
		log.Errorf("Error fetching subscriptions for vehicle %s: %v", ev.VehicleNumber, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(NewMessage(ev, wp.currency))
	if err != nil {
		log.Errorf("Error encoding notification for %s: %v", ev.VehicleNumber, err)
		return
	}

	log.Infof("Sending %d notifications for vehicle %s", len(subscriptions), ev.VehicleNumber)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	log := logger.Get(ctx)
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		log.Warnf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		metrics.NotificationsSent.WithLabelValues("expired").Inc()
		log.Infof("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Errorf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return
	}
	metrics.NotificationsSent.WithLabelValues("sent").Inc()
}
