package models

import "time"

// DaemonState records which process currently owns a background daemon.
type DaemonState struct {
	DaemonName    string     `gorm:"type:varchar(50);primaryKey"`
	PID           int        `gorm:"not null"`
	StartedAt     time.Time  `gorm:"type:timestamptz;not null"`
	LastHeartbeat *time.Time `gorm:"type:timestamptz"`
}

func (DaemonState) TableName() string {
	return "daemon_states"
}
