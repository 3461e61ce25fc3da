package services

import (
	"context"
	"log"
	"sync"
	"time"

	"lifeQuestAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher drains queued notifications through a small worker
// pool and keeps the notifications table tidy.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Notification *notification.Notification
	Preferences  *notification.NotificationPreferences
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  5,
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()
	go dispatcher.cleanupOldNotifications()

	return dispatcher
}

// SetPushProvider injects the real FCM provider from main.go. Without one,
// notifications stay in-app only.
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification
	prefs := job.Preferences

	if prefs.PushEnabled && len(prefs.DeviceTokens) > 0 && d.pushProvider != nil {
		err := d.pushProvider.SendPush(ctx, prefs.DeviceTokens, notif.Title, notif.Body, notif.Data)
		if err != nil {
			log.Printf("Push failed for user %s: %v", notif.UserID, err)
			d.markAsFailed(ctx, notif.ID.String())
			return
		}
	}

	d.markAsSent(ctx, notif.ID.String())
}

func (d *NotificationDispatcher) DispatchNotification(ctx context.Context, notif *notification.Notification, prefs *notification.NotificationPreferences) {
	job := &DispatchJob{Notification: notif, Preferences: prefs}

	select {
	case d.jobQueue <- job:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue notification %s: queue full", notif.ID)
	}
}

// cleanupOldNotifications deletes read notifications older than 90 days.
func (d *NotificationDispatcher) cleanupOldNotifications() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.performCleanup()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) performCleanup() {
	ctx := context.Background()

	query := `
	DELETE FROM notifications
	WHERE read_at < NOW() - INTERVAL '90 days'
	  AND is_read = true
	`

	result, err := d.service.db.Exec(ctx, query)
	if err != nil {
		log.Printf("Failed to cleanup old notifications: %v", err)
		return
	}
	if rows := result.RowsAffected(); rows > 0 {
		log.Printf("Cleaned up %d old notifications", rows)
	}
}

func (d *NotificationDispatcher) markAsSent(ctx context.Context, notificationID string) {
	query := `
	UPDATE notifications
	SET status = 'sent', sent_at = NOW()
	WHERE id = $1
	`
	if _, err := d.service.db.Exec(ctx, query, notificationID); err != nil {
		log.Printf("Failed to mark notification %s as sent: %v", notificationID, err)
	}
}

func (d *NotificationDispatcher) markAsFailed(ctx context.Context, notificationID string) {
	query := `
	UPDATE notifications
	SET status = 'failed'
	WHERE id = $1
	`
	if _, err := d.service.db.Exec(ctx, query, notificationID); err != nil {
		log.Printf("Failed to mark notification %s as failed: %v", notificationID, err)
	}
}

// Stop drains the worker pool. Queued jobs that have not started are dropped.
func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

// MockPushProvider logs instead of sending, for tests and local runs.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
