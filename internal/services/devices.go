package services

import (
	"context"
	"database/sql"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
)

// DeviceLog records where accounts sign in from, in the PostgreSQL user_devices table.
type DeviceLog struct {
	db *sql.DB
}

func NewDeviceLog(db *sql.DB) *DeviceLog {
	return &DeviceLog{db: db}
}

// Record upserts the device row for a session token.
func (d *DeviceLog) Record(ctx context.Context, device models.LoginDevice) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO user_devices (user_id, device_token, ip_address, user_agent, last_used)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (device_token) DO UPDATE
		SET ip_address = EXCLUDED.ip_address, user_agent = EXCLUDED.user_agent, last_used = NOW()
	`, device.UserID, device.DeviceToken, device.IPAddress, device.UserAgent)
	return err
}

// Recent lists a user's devices, most recently used first.
func (d *DeviceLog) Recent(ctx context.Context, userID string, limit int) ([]models.LoginDevice, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT user_id, device_token, COALESCE(ip_address, ''), COALESCE(user_agent, ''), last_used, created_at
		FROM user_devices WHERE user_id = $1
		ORDER BY last_used DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []models.LoginDevice{}
	for rows.Next() {
		var dev models.LoginDevice
		if err := rows.Scan(&dev.UserID, &dev.DeviceToken, &dev.IPAddress, &dev.UserAgent, &dev.LastUsed, &dev.CreatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, rows.Err()
}
