package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager présence des votants à distance. Un membre émargé en distanciel
// doit battre régulièrement; sans battement avant l'expiration du TTL il
// n'est plus considéré connecté. Consultatif: le quorum reste calculé sur
// la feuille d'émargement.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewManager Manager de présence
func NewManager(addr, password string, db int, ttl time.Duration) *Manager {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Manager{client: rdb, ttl: ttl}
}

func (m *Manager) memberKey(meetingID, memberID int64) string {
	return fmt.Sprintf("presence:meeting:%d:member:%d", meetingID, memberID)
}

func (m *Manager) meetingPattern(meetingID int64) string {
	return fmt.Sprintf("presence:meeting:%d:member:*", meetingID)
}

// Heartbeat signale que le membre distant est toujours connecté
func (m *Manager) Heartbeat(ctx context.Context, meetingID, memberID int64) error {
	return m.client.Set(ctx, m.memberKey(meetingID, memberID), time.Now().Unix(), m.ttl).Err()
}

// IsConnected le membre distant a battu dans la fenêtre du TTL
func (m *Manager) IsConnected(ctx context.Context, meetingID, memberID int64) (bool, error) {
	err := m.client.Get(ctx, m.memberKey(meetingID, memberID)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Disconnect retire le membre (déconnexion explicite)
func (m *Manager) Disconnect(ctx context.Context, meetingID, memberID int64) error {
	return m.client.Del(ctx, m.memberKey(meetingID, memberID)).Err()
}

// ConnectedCount nombre de membres distants connectés pour l'assemblée
func (m *Manager) ConnectedCount(ctx context.Context, meetingID int64) (int, error) {
	var count int
	iter := m.client.Scan(ctx, 0, m.meetingPattern(meetingID), 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// Close ferme la connexion
func (m *Manager) Close() error {
	return m.client.Close()
}
