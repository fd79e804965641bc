// Package redisstate implements the PresenceRepository on Redis.
package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

// presenceTTL bounds how long an untouched project presence hash survives.
const presenceTTL = 30 * time.Minute

// RedisPresenceRepository is the PresenceRepository implementation on Redis.
type RedisPresenceRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPresenceRepository creates a RedisPresenceRepository instance.
func NewRedisPresenceRepository(client *redis.Client, keyPrefix string) *RedisPresenceRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisPresenceRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "cc:"
	}
	return &RedisPresenceRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key generation helpers ---

func (r *RedisPresenceRepository) presenceKey(projectID string) string {
	return fmt.Sprintf("%sproject:%s:presence", r.keyPrefix, projectID)
}

func (r *RedisPresenceRepository) colorsKey(projectID string) string {
	return fmt.Sprintf("%sproject:%s:colors", r.keyPrefix, projectID)
}

func (r *RedisPresenceRepository) projectIndexKey() string {
	return r.keyPrefix + "presence:projects"
}

func (r *RedisPresenceRepository) eventChannel(projectID string) string {
	return fmt.Sprintf("%sproject:%s:events", r.keyPrefix, projectID)
}

// --- PresenceRepository implementation ---

func (r *RedisPresenceRepository) SetPresence(ctx context.Context, presence *domain.UserPresence) error {
	key := r.presenceKey(presence.ProjectID)
	payload, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("redis: marshal presence for user %s: %w", presence.UserID, err)
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, presence.UserID, string(payload))
	pipe.Expire(ctx, key, presenceTTL)
	pipe.SAdd(ctx, r.projectIndexKey(), presence.ProjectID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set presence for user %s in project %s: %w", presence.UserID, presence.ProjectID, err)
	}
	return nil
}

func (r *RedisPresenceRepository) GetProjectPresence(ctx context.Context, projectID string) ([]domain.UserPresence, error) {
	key := r.presenceKey(projectID)
	entries, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get presence for project %s: %w", projectID, err)
	}
	out := make([]domain.UserPresence, 0, len(entries))
	for userID, raw := range entries {
		var p domain.UserPresence
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": projectID,
				"user_id":    userID,
			}).Warn("Dropping undecodable presence entry")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *RedisPresenceRepository) RemovePresence(ctx context.Context, projectID, userID string) error {
	key := r.presenceKey(projectID)
	if err := r.client.HDel(ctx, key, userID).Err(); err != nil {
		return fmt.Errorf("redis: remove presence for user %s in project %s: %w", userID, projectID, err)
	}
	return nil
}

// SweepStale walks the project index and deletes presence entries whose
// last activity is older than maxAge. Empty hashes and their color tables
// are cleaned up along the way.
func (r *RedisPresenceRepository) SweepStale(ctx context.Context, maxAge time.Duration) (int, error) {
	projects, err := r.client.SMembers(ctx, r.projectIndexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: list presence projects: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, projectID := range projects {
		entries, err := r.client.HGetAll(ctx, r.presenceKey(projectID)).Result()
		if err != nil {
			logrus.WithError(err).WithField("project_id", projectID).Warn("Presence sweep: read failed, skipping project")
			continue
		}
		for userID, raw := range entries {
			var p domain.UserPresence
			if err := json.Unmarshal([]byte(raw), &p); err != nil || p.LastActivity.Before(cutoff) {
				if delErr := r.client.HDel(ctx, r.presenceKey(projectID), userID).Err(); delErr != nil {
					logrus.WithError(delErr).WithFields(logrus.Fields{
						"project_id": projectID,
						"user_id":    userID,
					}).Warn("Presence sweep: delete failed")
					continue
				}
				if err := r.client.HDel(ctx, r.colorsKey(projectID), userID).Err(); err != nil {
					logrus.WithError(err).WithField("user_id", userID).Warn("Presence sweep: color release failed")
				}
				removed++
			}
		}
		remaining, err := r.client.HLen(ctx, r.presenceKey(projectID)).Result()
		if err == nil && remaining == 0 {
			if err := r.client.SRem(ctx, r.projectIndexKey(), projectID).Err(); err != nil {
				logrus.WithError(err).WithField("project_id", projectID).Warn("Presence sweep: index cleanup failed")
			}
		}
	}
	return removed, nil
}

func (r *RedisPresenceRepository) GetColor(ctx context.Context, projectID, userID string) (string, error) {
	color, err := r.client.HGet(ctx, r.colorsKey(projectID), userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrColorNotFound
		}
		return "", fmt.Errorf("redis: get color for user %s in project %s: %w", userID, projectID, err)
	}
	return color, nil
}

func (r *RedisPresenceRepository) ProjectColors(ctx context.Context, projectID string) (map[string]string, error) {
	colors, err := r.client.HGetAll(ctx, r.colorsKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get colors for project %s: %w", projectID, err)
	}
	return colors, nil
}

func (r *RedisPresenceRepository) AssignColor(ctx context.Context, projectID, userID, color string) error {
	key := r.colorsKey(projectID)
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, userID, color)
	pipe.Expire(ctx, key, presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: assign color %s to user %s in project %s: %w", color, userID, projectID, err)
	}
	return nil
}

func (r *RedisPresenceRepository) ReleaseColor(ctx context.Context, projectID, userID string) error {
	if err := r.client.HDel(ctx, r.colorsKey(projectID), userID).Err(); err != nil {
		return fmt.Errorf("redis: release color for user %s in project %s: %w", userID, projectID, err)
	}
	return nil
}

// CheckRateLimit increments the counter for key and reports whether the
// limit is exceeded within the window.
func (r *RedisPresenceRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: pipeline failed for rate limit check on key %s: %w", key, err)
	}
	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis: get incr result for rate limit on key %s: %w", key, err)
	}
	return count > int64(limit), nil
}

// PublishEvent publishes a collaboration event on the project channel for
// out-of-process consumers, e.g. the desktop bridge relay.
func (r *RedisPresenceRepository) PublishEvent(ctx context.Context, projectID string, msg *domain.Message) error {
	channel := r.eventChannel(projectID)
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis: marshal event %s for publish: %w", msg.Type, err)
	}
	if err := r.client.Publish(ctx, channel, string(payload)).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"event_type":   msg.Type,
			"project_id":   projectID,
		}).WithError(err).Error("Redis publish failed")
		return fmt.Errorf("redis: publish event to channel %s: %w", channel, err)
	}
	return nil
}
