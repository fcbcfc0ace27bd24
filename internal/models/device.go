package models

import "time"

// LoginDevice is a row in the PostgreSQL user_devices table.
type LoginDevice struct {
	UserID      string    `json:"user_id"`
	DeviceToken string    `json:"-"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	LastUsed    time.Time `json:"last_used"`
	CreatedAt   time.Time `json:"created_at"`
}
