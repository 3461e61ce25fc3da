package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/types/notification"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	service := &NotificationService{db: db}
	service.dispatcher = NewNotificationDispatcher(service)
	return service
}

// Dispatcher exposes the dispatcher so main.go can inject the push provider
// and stop the workers on shutdown.
func (s *NotificationService) Dispatcher() *NotificationDispatcher {
	return s.dispatcher
}

// CreateNotification stores the notification and queues it for delivery.
// Returns (nil, nil) when the user has the type disabled.
func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	prefs, err := s.GetUserPreferencesByUUID(ctx, req.UserID)
	if err != nil {
		prefs, err = s.createDefaultPreferences(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to create preferences: %w", err)
		}
	}

	if enabled, ok := prefs.EnabledTypes[string(req.Type)]; ok && !enabled {
		log.Printf("Notification type %s disabled for user %s", req.Type, req.UserID)
		return nil, nil
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	dataJSON, _ := json.Marshal(req.Data)

	query := `
	INSERT INTO notifications (id, user_id, type, priority, status, title, body, data, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NOW())
	RETURNING id, user_id, type, priority, status, title, body, data, is_read, sent_at, read_at, created_at
	`

	notif := &notification.Notification{}
	var dataStr []byte
	err = s.db.QueryRow(
		ctx, query,
		uuid.New(), req.UserID, req.Type, priority, notification.StatusPending,
		req.Title, req.Body, dataJSON,
	).Scan(
		&notif.ID, &notif.UserID, &notif.Type, &notif.Priority, &notif.Status,
		&notif.Title, &notif.Body, &dataStr, &notif.IsRead, &notif.SentAt,
		&notif.ReadAt, &notif.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	json.Unmarshal(dataStr, &notif.Data)

	go s.dispatcher.DispatchNotification(context.Background(), notif, prefs)

	return notif, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	whereClause := "WHERE user_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	query := fmt.Sprintf(`
	SELECT id, user_id, type, priority, status, title, body, data, is_read, sent_at, read_at, created_at
	FROM notifications
	%s
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, whereClause)

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		notif := &notification.Notification{}
		var dataStr []byte
		err := rows.Scan(
			&notif.ID, &notif.UserID, &notif.Type, &notif.Priority, &notif.Status,
			&notif.Title, &notif.Body, &dataStr, &notif.IsRead, &notif.SentAt,
			&notif.ReadAt, &notif.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		json.Unmarshal(dataStr, &notif.Data)
		notifications = append(notifications, notif)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	resp := &notification.NotificationListResponse{
		Notifications: notifications,
		Page:          page,
		PageSize:      pageSize,
	}
	err = s.db.QueryRow(ctx, `
	SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = false)
	FROM notifications WHERE user_id = $1
	`, userID).Scan(&resp.TotalCount, &resp.UnreadCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return resp, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, clerkID, notificationID string) error {
	query := `
	UPDATE notifications
	SET is_read = true, read_at = NOW()
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`

	result, err := s.db.Exec(ctx, query, clerkID, notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification", ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) (int64, error) {
	query := `
	UPDATE notifications
	SET is_read = true, read_at = NOW()
	WHERE is_read = false AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`

	result, err := s.db.Exec(ctx, query, clerkID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return result.RowsAffected(), nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, clerkID, notificationID string) error {
	query := `
	DELETE FROM notifications
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`

	result, err := s.db.Exec(ctx, query, clerkID, notificationID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification", ErrNotFound)
	}
	return nil
}

func (s *NotificationService) GetUserPreferencesByUUID(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	query := `
	SELECT user_id, push_enabled, in_app_enabled, enabled_types
	FROM notification_preferences
	WHERE user_id = $1
	`

	prefs := &notification.NotificationPreferences{}
	var typesJSON []byte
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID, &prefs.PushEnabled, &prefs.InAppEnabled, &typesJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: preferences", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	json.Unmarshal(typesJSON, &prefs.EnabledTypes)

	prefs.DeviceTokens, err = s.getDeviceTokens(ctx, userID)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *NotificationService) GetUserPreferences(ctx context.Context, clerkID string) (*notification.NotificationPreferences, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	prefs, err := s.GetUserPreferencesByUUID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return s.createDefaultPreferences(ctx, userID)
	}
	return prefs, err
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, clerkID string, req *notification.UpdatePreferencesRequest) (*notification.NotificationPreferences, error) {
	prefs, err := s.GetUserPreferences(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		prefs.PushEnabled = *req.PushEnabled
	}
	if req.InAppEnabled != nil {
		prefs.InAppEnabled = *req.InAppEnabled
	}
	if req.EnabledTypes != nil {
		if prefs.EnabledTypes == nil {
			prefs.EnabledTypes = map[string]bool{}
		}
		for k, v := range req.EnabledTypes {
			prefs.EnabledTypes[k] = v
		}
	}

	typesJSON, _ := json.Marshal(prefs.EnabledTypes)
	query := `
	UPDATE notification_preferences
	SET push_enabled = $2, in_app_enabled = $3, enabled_types = $4
	WHERE user_id = $1
	`
	_, err = s.db.Exec(ctx, query, prefs.UserID, prefs.PushEnabled, prefs.InAppEnabled, typesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return prefs, nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("%w: user", ErrNotFound)
	}

	query := `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3
	`
	_, err = s.db.Exec(ctx, query, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) UnregisterDevice(ctx context.Context, clerkID, token string) error {
	query := `
	DELETE FROM device_tokens
	WHERE token = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`
	result, err := s.db.Exec(ctx, query, clerkID, token)
	if err != nil {
		return fmt.Errorf("failed to unregister device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: device token", ErrNotFound)
	}
	return nil
}

func (s *NotificationService) getDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *NotificationService) createDefaultPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	prefs := &notification.NotificationPreferences{
		UserID:       userID,
		PushEnabled:  true,
		InAppEnabled: true,
		EnabledTypes: map[string]bool{
			string(notification.TypeLevelUp):        true,
			string(notification.TypeStreakBonus):    true,
			string(notification.TypeBurnout):        true,
			string(notification.TypeStreakRisk):     true,
			string(notification.TypeRewardRedeemed): true,
		},
	}

	typesJSON, _ := json.Marshal(prefs.EnabledTypes)
	query := `
	INSERT INTO notification_preferences (user_id, push_enabled, in_app_enabled, enabled_types)
	VALUES ($1, true, true, $2)
	ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query, userID, typesJSON); err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	return prefs, nil
}

// NotifyLevelUp fires a push when the level curve crossed a boundary.
// Best effort; gameplay writes never fail because a notification did.
func (s *NotificationService) NotifyLevelUp(ctx context.Context, userID uuid.UUID, newLevel int, title string) {
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeLevelUp,
		Priority: notification.PriorityHigh,
		Title:    fmt.Sprintf("Level %d reached!", newLevel),
		Body:     fmt.Sprintf("You are now a %s. Keep going!", title),
		Data:     map[string]any{"level": newLevel},
	})
	if err != nil {
		log.Printf("Failed to create level up notification: %v", err)
	}
}

func (s *NotificationService) NotifyStreakBonus(ctx context.Context, userID uuid.UUID, streak, coins int) {
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeStreakBonus,
		Priority: notification.PriorityNormal,
		Title:    fmt.Sprintf("%d day streak!", streak),
		Body:     fmt.Sprintf("You earned %d coins for staying consistent.", coins),
		Data:     map[string]any{"streak": streak, "coins": coins},
	})
	if err != nil {
		log.Printf("Failed to create streak bonus notification: %v", err)
	}
}

func (s *NotificationService) NotifyBurnout(ctx context.Context, userID uuid.UUID) {
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeBurnout,
		Priority: notification.PriorityUrgent,
		Title:    "Burnout warning",
		Body:     "You have been running on empty for days. Today your energy starts halved. Rest up.",
	})
	if err != nil {
		log.Printf("Failed to create burnout notification: %v", err)
	}
}

func (s *NotificationService) NotifyRewardRedeemed(ctx context.Context, userID uuid.UUID, rewardName string, cost int) {
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeRewardRedeemed,
		Priority: notification.PriorityLow,
		Title:    "Reward redeemed",
		Body:     fmt.Sprintf("Enjoy %q. It cost you %d coins.", rewardName, cost),
		Data:     map[string]any{"reward": rewardName, "coins": cost},
	})
	if err != nil {
		log.Printf("Failed to create reward notification: %v", err)
	}
}
