package db

import (
	"time"

	"gorm.io/datatypes"
)

// Room mirrors one in-memory game room. The in-process registry is
// authoritative; these rows exist for history and post-restart inspection.
type Room struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Mode        string         `gorm:"size:32;not null;index"`
	Status      string         `gorm:"size:32;not null"`
	RoundNumber int            `gorm:"not null;default:0"`
	MaxRounds   int            `gorm:"not null"`
	Scores      datatypes.JSON `gorm:"type:jsonb"`
	Winner      string         `gorm:"size:128"`
	StartedAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Players     []RoomPlayer
	Results     []GameResult
}

type RoomPlayer struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    string    `gorm:"size:36;index;not null;uniqueIndex:idx_room_players_room_wallet"`
	Wallet    string    `gorm:"size:128;not null;uniqueIndex:idx_room_players_room_wallet"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type Player struct {
	Wallet    string    `gorm:"primaryKey;size:128"`
	Username  string    `gorm:"size:64"`
	Rating    int       `gorm:"not null;default:1000"`
	Score     int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type QueueEntry struct {
	ID         uint      `gorm:"primaryKey"`
	Wallet     string    `gorm:"size:128;not null;uniqueIndex:idx_queue_wallet_mode"`
	Mode       string    `gorm:"size:32;not null;uniqueIndex:idx_queue_wallet_mode"`
	Rating     int       `gorm:"not null"`
	EnqueuedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

type GameResult struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:36;index;not null"`
	Winner    string         `gorm:"size:128;not null"`
	Mode      string         `gorm:"size:32;not null"`
	Score     int            `gorm:"not null"`
	TxDigest  string         `gorm:"size:128"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
}
