// Package gateway implements game.Gateway against the Postgres mirror and
// the reward minter. All writes tolerate a nil connection so the core can
// run without a database (tests, local play).
package gateway

import (
	"encoding/json"
	"errors"
	"time"

	"memeclash/internal/db"
	"memeclash/internal/game"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Minter interface {
	MintReward(playerID string, mode game.Mode) (string, error)
}

type DB struct {
	conn   *gorm.DB
	minter Minter
}

func New(conn *gorm.DB, minter Minter) *DB {
	return &DB{conn: conn, minter: minter}
}

func (g *DB) PersistRoom(room game.Room) error {
	if g.conn == nil {
		return nil
	}
	scores, err := json.Marshal(room.Scores)
	if err != nil {
		return err
	}
	record := db.Room{
		ID:          room.ID,
		Mode:        string(room.Mode),
		Status:      string(room.Status),
		RoundNumber: room.RoundNumber,
		MaxRounds:   room.MaxRounds,
		Scores:      scores,
		Winner:      room.Winner,
	}
	if !room.StartTime.IsZero() {
		started := room.StartTime
		record.StartedAt = &started
	}
	return g.conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&record).Error
}

func (g *DB) AddRoomPlayer(roomID, playerID string) error {
	if g.conn == nil {
		return nil
	}
	record := db.RoomPlayer{
		RoomID:   roomID,
		Wallet:   playerID,
		JoinedAt: time.Now().UTC(),
	}
	if err := g.conn.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (g *DB) PlayerRating(playerID string) (int, error) {
	if g.conn == nil {
		return 0, nil
	}
	var player db.Player
	err := g.conn.First(&player, "wallet = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return player.Rating, nil
}

func (g *DB) UpdatePlayerRating(playerID string, rating int) error {
	if g.conn == nil {
		return nil
	}
	return g.upsertPlayer(playerID, map[string]any{"rating": rating})
}

func (g *DB) UpdatePlayerScore(playerID string, score int) error {
	if g.conn == nil {
		return nil
	}
	return g.upsertPlayer(playerID, map[string]any{"score": score})
}

func (g *DB) upsertPlayer(playerID string, updates map[string]any) error {
	record := db.Player{Wallet: playerID, Rating: game.InitialRating}
	if err := g.conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	return g.conn.Model(&db.Player{}).Where("wallet = ?", playerID).Updates(updates).Error
}

func (g *DB) RecordGameResult(roomID, winnerID string, result game.GameResult) error {
	if g.conn == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	record := db.GameResult{
		RoomID:   roomID,
		Winner:   winnerID,
		Mode:     string(result.Mode),
		Score:    result.Score,
		TxDigest: result.TxDigest,
		Payload:  payload,
	}
	return g.conn.Create(&record).Error
}

func (g *DB) MintReward(playerID string, mode game.Mode) (string, error) {
	if g.minter == nil {
		return "", errors.New("no minter configured")
	}
	return g.minter.MintReward(playerID, mode)
}

func (g *DB) PersistQueueEntry(entry game.QueueEntry) error {
	if g.conn == nil {
		return nil
	}
	record := db.QueueEntry{
		Wallet:     entry.PlayerID,
		Mode:       string(entry.Mode),
		Rating:     entry.Rating,
		EnqueuedAt: entry.EnqueuedAt,
	}
	if err := g.conn.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (g *DB) RemoveQueueEntry(playerID string, mode game.Mode) error {
	if g.conn == nil {
		return nil
	}
	return g.conn.Where("wallet = ? AND mode = ?", playerID, string(mode)).Delete(&db.QueueEntry{}).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
