package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wlin7245/remindly/internal/database"
	"github.com/wlin7245/remindly/internal/models"
)

const reminderColumns = `reminder_id, user_id, content, category, importance, due_at,
	when_day, when_time, repeat_kind, repeat_interval, active, voice_input, processed,
	trigger_points, repeat_rule, alert_config, acknowledged_at, last_message_id, created_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (user_id, content, category, importance, due_at, when_day, when_time,
			repeat_kind, repeat_interval, active, voice_input, processed, trigger_points, repeat_rule, alert_config)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING reminder_id, created_at`,
		reminder.UserID, reminder.Content, reminder.Category, reminder.Importance, reminder.DueAt,
		reminder.WhenDay, reminder.WhenTime, reminder.RepeatKind, reminder.RepeatInterval,
		reminder.Active, reminder.VoiceInput, reminder.Processed,
		reminder.TriggerPoints, reminder.RepeatRule, reminder.AlertConfig,
	).Scan(&reminder.ID, &reminder.CreatedAt)
}

func scanReminder(row pgx.Row) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := row.Scan(&reminder.ID, &reminder.UserID, &reminder.Content, &reminder.Category,
		&reminder.Importance, &reminder.DueAt, &reminder.WhenDay, &reminder.WhenTime,
		&reminder.RepeatKind, &reminder.RepeatInterval, &reminder.Active, &reminder.VoiceInput,
		&reminder.Processed, &reminder.TriggerPoints, &reminder.RepeatRule, &reminder.AlertConfig,
		&reminder.AcknowledgedAt, &reminder.LastMessageID, &reminder.CreatedAt)
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// GetByID returns the reminder or nil when it does not exist.
func (r *ReminderRepository) GetByID(ctx context.Context, id int) (*models.Reminder, error) {
	reminder, err := scanReminder(r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reminder, err
}

func (r *ReminderRepository) queryMany(ctx context.Context, sql string, args ...any) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	return r.queryMany(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = $1 ORDER BY due_at ASC`, userID)
}

// GetActive returns every active reminder across all users, used for alarm
// re-registration at startup.
func (r *ReminderRepository) GetActive(ctx context.Context) ([]*models.Reminder, error) {
	return r.queryMany(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE active = TRUE ORDER BY due_at ASC`)
}

func (r *ReminderRepository) GetUpcoming(ctx context.Context, userID int64, until time.Time) ([]*models.Reminder, error) {
	return r.queryMany(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND active = TRUE AND due_at BETWEEN NOW() AND $2
		 ORDER BY due_at ASC`, userID, until)
}

func (r *ReminderRepository) GetByCategory(ctx context.Context, userID int64, category string) ([]*models.Reminder, error) {
	return r.queryMany(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND category = $2 ORDER BY due_at ASC`, userID, category)
}

func (r *ReminderRepository) GetByMinImportance(ctx context.Context, userID int64, min int) ([]*models.Reminder, error) {
	return r.queryMany(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND importance >= $2 ORDER BY importance DESC, due_at ASC`, userID, min)
}

func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET content = $1, category = $2, importance = $3, due_at = $4,
			when_day = $5, when_time = $6, repeat_kind = $7, repeat_interval = $8, active = $9,
			processed = $10, trigger_points = $11, repeat_rule = $12, alert_config = $13,
			acknowledged_at = $14
		 WHERE reminder_id = $15 AND user_id = $16`,
		reminder.Content, reminder.Category, reminder.Importance, reminder.DueAt,
		reminder.WhenDay, reminder.WhenTime, reminder.RepeatKind, reminder.RepeatInterval,
		reminder.Active, reminder.Processed, reminder.TriggerPoints, reminder.RepeatRule,
		reminder.AlertConfig, reminder.AcknowledgedAt, reminder.ID, reminder.UserID,
	)
	return err
}

// SetDueAt moves a reminder to its next occurrence and clears the previous
// acknowledgement so a fresh alert series can run.
func (r *ReminderRepository) SetDueAt(ctx context.Context, id int, dueAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET due_at = $1, acknowledged_at = NULL WHERE reminder_id = $2`,
		dueAt, id)
	return err
}

func (r *ReminderRepository) SetActive(ctx context.Context, id int, userID int64, active bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET active = $1 WHERE reminder_id = $2 AND user_id = $3`,
		active, id, userID)
	return err
}

func (r *ReminderRepository) SetAcknowledged(ctx context.Context, id int, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET acknowledged_at = $1 WHERE reminder_id = $2`, at, id)
	return err
}

func (r *ReminderRepository) SetLastMessageID(ctx context.Context, id int, messageID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET last_message_id = $1 WHERE reminder_id = $2`, messageID, id)
	return err
}

func (r *ReminderRepository) Delete(ctx context.Context, id int, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE reminder_id = $1 AND user_id = $2`, id, userID)
	return err
}
