package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/delivery"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
	"gorm.io/gorm"
)

// --- Persistence Models ---

type scheduleModel struct {
	ID           string         `gorm:"primaryKey;column:id"`
	UserID       string         `gorm:"column:user_id;not null;index"`
	Name         string         `gorm:"column:name;not null"`
	ConnectionID string         `gorm:"column:platform_id;not null"`
	RecipientIDs string         `gorm:"column:recipient_ids;type:text"` // comma-joined
	Message      string         `gorm:"column:message;type:text;not null"`
	Type         string         `gorm:"column:schedule_type;not null"`
	ScheduledAt  *time.Time     `gorm:"column:scheduled_at"`
	TimeOfDay    sql.NullString `gorm:"column:time_of_day"`
	Days         sql.NullString `gorm:"column:days"` // comma-joined short names
	Timezone     sql.NullString `gorm:"column:timezone"`
	Enabled      bool           `gorm:"column:is_enabled;default:true;index"`
	LastRun      *time.Time     `gorm:"column:last_run"`
	NextRun      *time.Time     `gorm:"column:next_run"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;not null"`
}

func (scheduleModel) TableName() string { return "schedules" }

type connectionModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	UserID      string         `gorm:"column:user_id;not null;uniqueIndex:idx_user_platform"`
	Type        string         `gorm:"column:platform;not null;uniqueIndex:idx_user_platform"`
	Verified    bool           `gorm:"column:is_verified;default:false"`
	Email       sql.NullString `gorm:"column:email"`
	PhoneNumber sql.NullString `gorm:"column:phone_number"`
	ChatID      sql.NullString `gorm:"column:chat_id"`
	Username    sql.NullString `gorm:"column:username"`
	SessionData sql.NullString `gorm:"column:session_data;type:text"`
	ConnectedAt *time.Time     `gorm:"column:connected_at"`
	LastUsed    *time.Time     `gorm:"column:last_used"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;not null"`
}

func (connectionModel) TableName() string { return "platform_connections" }

type recipientModel struct {
	ID           string    `gorm:"primaryKey;column:id"`
	UserID       string    `gorm:"column:user_id;not null;index"`
	ConnectionID string    `gorm:"column:platform_id;not null"`
	Name         string    `gorm:"column:name;not null"`
	Identifier   string    `gorm:"column:identifier;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (recipientModel) TableName() string { return "recipients" }

type logModel struct {
	ID         string         `gorm:"primaryKey;column:id"`
	UserID     string         `gorm:"column:user_id;not null;index"`
	ScheduleID string         `gorm:"column:schedule_id;not null;index"`
	Platform   string         `gorm:"column:platform;not null"`
	Recipient  string         `gorm:"column:recipient;not null"`
	Message    string         `gorm:"column:message;type:text"`
	Status     string         `gorm:"column:status;not null"`
	Error      sql.NullString `gorm:"column:error"`
	SentAt     time.Time      `gorm:"column:sent_at;not null;index"`
}

func (logModel) TableName() string { return "delivery_logs" }

// --- Store Implementation ---

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (r *GormStore) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&scheduleModel{},
		&connectionModel{},
		&recipientModel{},
		&logModel{},
	)
}

// Schedules

func (r *GormStore) CreateSchedule(ctx context.Context, s schedule.Schedule) error {
	model := toScheduleModel(s)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormStore) GetSchedule(ctx context.Context, id string) (schedule.Schedule, error) {
	var m scheduleModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return schedule.Schedule{}, common.ErrScheduleNotFound
		}
		return schedule.Schedule{}, err
	}
	return fromScheduleModel(m), nil
}

func (r *GormStore) ListSchedules(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	var models []scheduleModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]schedule.Schedule, len(models))
	for i, m := range models {
		out[i] = fromScheduleModel(m)
	}
	return out, nil
}

func (r *GormStore) ListEnabledSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	var models []scheduleModel
	if err := r.db.WithContext(ctx).Where("is_enabled = ?", true).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]schedule.Schedule, len(models))
	for i, m := range models {
		out[i] = fromScheduleModel(m)
	}
	return out, nil
}

func (r *GormStore) UpdateSchedule(ctx context.Context, s schedule.Schedule) error {
	model := toScheduleModel(s)
	res := r.db.WithContext(ctx).Model(&scheduleModel{}).Where("id = ?", s.ID).
		Select("*").Omit("id", "created_at").Updates(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrScheduleNotFound
	}
	return nil
}

func (r *GormStore) UpdateScheduleLastRun(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&scheduleModel{}).Where("id = ?", id).
		Updates(map[string]any{"last_run": at, "updated_at": time.Now().UTC()}).Error
}

func (r *GormStore) DeleteSchedule(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&scheduleModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrScheduleNotFound
	}
	return nil
}

// Platform connections

func (r *GormStore) UpsertConnection(ctx context.Context, conn platform.Connection) error {
	var existing connectionModel
	err := r.db.WithContext(ctx).
		First(&existing, "user_id = ? AND platform = ?", conn.UserID, string(conn.Type)).Error
	if err == gorm.ErrRecordNotFound {
		if conn.ID == "" {
			conn.ID = uuid.NewString()
		}
		model := toConnectionModel(conn)
		return r.db.WithContext(ctx).Create(&model).Error
	}
	if err != nil {
		return err
	}
	conn.ID = existing.ID
	model := toConnectionModel(conn)
	return r.db.WithContext(ctx).Model(&connectionModel{}).Where("id = ?", existing.ID).
		Select("*").Omit("id", "created_at").Updates(&model).Error
}

func (r *GormStore) GetConnection(ctx context.Context, id string) (platform.Connection, error) {
	var m connectionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return platform.Connection{}, common.ErrConnectionNotFound
		}
		return platform.Connection{}, err
	}
	return fromConnectionModel(m), nil
}

func (r *GormStore) GetConnectionByUserAndType(ctx context.Context, userID string, t platform.Type) (platform.Connection, error) {
	var m connectionModel
	if err := r.db.WithContext(ctx).
		First(&m, "user_id = ? AND platform = ?", userID, string(t)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return platform.Connection{}, common.ErrConnectionNotFound
		}
		return platform.Connection{}, err
	}
	return fromConnectionModel(m), nil
}

func (r *GormStore) ListConnections(ctx context.Context, userID string) ([]platform.Connection, error) {
	var models []connectionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]platform.Connection, len(models))
	for i, m := range models {
		out[i] = fromConnectionModel(m)
	}
	return out, nil
}

func (r *GormStore) SetConnectionVerified(ctx context.Context, userID string, t platform.Type, verified bool) error {
	return r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("user_id = ? AND platform = ?", userID, string(t)).
		Updates(map[string]any{"is_verified": verified, "updated_at": time.Now().UTC()}).Error
}

func (r *GormStore) ClearConnectionSession(ctx context.Context, userID string, t platform.Type) error {
	return r.db.WithContext(ctx).Model(&connectionModel{}).
		Where("user_id = ? AND platform = ?", userID, string(t)).
		Updates(map[string]any{"session_data": nil, "updated_at": time.Now().UTC()}).Error
}

// Recipients

func (r *GormStore) CreateRecipient(ctx context.Context, rec platform.Recipient) error {
	model := toRecipientModel(rec)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormStore) GetRecipients(ctx context.Context, ids []string) ([]platform.Recipient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []recipientModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	// Preserve the schedule's recipient ordering.
	byID := make(map[string]recipientModel, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	out := make([]platform.Recipient, 0, len(models))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, fromRecipientModel(m))
		}
	}
	return out, nil
}

func (r *GormStore) ListRecipients(ctx context.Context, userID string) ([]platform.Recipient, error) {
	var models []recipientModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]platform.Recipient, len(models))
	for i, m := range models {
		out[i] = fromRecipientModel(m)
	}
	return out, nil
}

func (r *GormStore) DeleteRecipient(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&recipientModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrRecipientNotFound
	}
	return nil
}

// Delivery log

func (r *GormStore) AppendLog(ctx context.Context, entry delivery.LogEntry) error {
	model := logModel{
		ID:         entry.ID,
		UserID:     entry.UserID,
		ScheduleID: entry.ScheduleID,
		Platform:   string(entry.Platform),
		Recipient:  entry.Recipient,
		Message:    entry.Message,
		Status:     string(entry.Status),
		Error:      toNullString(entry.Error),
		SentAt:     entry.SentAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormStore) ListLogs(ctx context.Context, userID string, limit, offset int) ([]delivery.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []logModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).Offset(offset).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]delivery.LogEntry, len(models))
	for i, m := range models {
		out[i] = delivery.LogEntry{
			ID:         m.ID,
			UserID:     m.UserID,
			ScheduleID: m.ScheduleID,
			Platform:   platform.Type(m.Platform),
			Recipient:  m.Recipient,
			Message:    m.Message,
			Status:     delivery.Status(m.Status),
			Error:      m.Error.String,
			SentAt:     m.SentAt,
		}
	}
	return out, nil
}

// --- Mapping helpers ---

func toScheduleModel(s schedule.Schedule) scheduleModel {
	return scheduleModel{
		ID:           s.ID,
		UserID:       s.UserID,
		Name:         s.Name,
		ConnectionID: s.ConnectionID,
		RecipientIDs: strings.Join(s.RecipientIDs, ","),
		Message:      s.Message,
		Type:         string(s.Type),
		ScheduledAt:  s.ScheduledAt,
		TimeOfDay:    toNullString(s.TimeOfDay),
		Days:         toNullString(strings.Join(s.Days, ",")),
		Timezone:     toNullString(s.Timezone),
		Enabled:      s.Enabled,
		LastRun:      s.LastRun,
		NextRun:      s.NextRun,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func fromScheduleModel(m scheduleModel) schedule.Schedule {
	var recipients []string
	if m.RecipientIDs != "" {
		recipients = strings.Split(m.RecipientIDs, ",")
	}
	var days []string
	if m.Days.String != "" {
		days = strings.Split(m.Days.String, ",")
	}
	return schedule.Schedule{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		ConnectionID: m.ConnectionID,
		RecipientIDs: recipients,
		Message:      m.Message,
		Type:         schedule.Type(m.Type),
		ScheduledAt:  m.ScheduledAt,
		TimeOfDay:    m.TimeOfDay.String,
		Days:         days,
		Timezone:     m.Timezone.String,
		Enabled:      m.Enabled,
		LastRun:      m.LastRun,
		NextRun:      m.NextRun,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toConnectionModel(c platform.Connection) connectionModel {
	return connectionModel{
		ID:          c.ID,
		UserID:      c.UserID,
		Type:        string(c.Type),
		Verified:    c.Verified,
		Email:       toNullString(c.Email),
		PhoneNumber: toNullString(c.PhoneNumber),
		ChatID:      toNullString(c.ChatID),
		Username:    toNullString(c.Username),
		SessionData: toNullString(c.SessionData),
		ConnectedAt: c.ConnectedAt,
		LastUsed:    c.LastUsed,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromConnectionModel(m connectionModel) platform.Connection {
	return platform.Connection{
		ID:          m.ID,
		UserID:      m.UserID,
		Type:        platform.Type(m.Type),
		Verified:    m.Verified,
		Email:       m.Email.String,
		PhoneNumber: m.PhoneNumber.String,
		ChatID:      m.ChatID.String,
		Username:    m.Username.String,
		SessionData: m.SessionData.String,
		ConnectedAt: m.ConnectedAt,
		LastUsed:    m.LastUsed,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRecipientModel(r platform.Recipient) recipientModel {
	return recipientModel{
		ID:           r.ID,
		UserID:       r.UserID,
		ConnectionID: r.ConnectionID,
		Name:         r.Name,
		Identifier:   r.Identifier,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromRecipientModel(m recipientModel) platform.Recipient {
	return platform.Recipient{
		ID:           m.ID,
		UserID:       m.UserID,
		ConnectionID: m.ConnectionID,
		Name:         m.Name,
		Identifier:   m.Identifier,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
