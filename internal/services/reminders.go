package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"examtrack-backend/internal/models"
	"examtrack-backend/internal/repository"
	"examtrack-backend/internal/streak"
)

const (
	reminderPollInterval = 1 * time.Hour
	reminderOncePer      = 20 * time.Hour
)

// ReminderScheduler nudges students whose streak will lapse at the next day
// boundary. Nudges go out over the pub/sub channel the websocket hub relays.
type ReminderScheduler struct {
	profileRepo *repository.ProfileRepo
	redis       *redis.Client
	stopChan    chan struct{}
}

func NewReminderScheduler(profileRepo *repository.ProfileRepo, redisClient *redis.Client) *ReminderScheduler {
	return &ReminderScheduler{
		profileRepo: profileRepo,
		redis:       redisClient,
		stopChan:    make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	if s.profileRepo == nil || s.redis == nil {
		return
	}
	go s.loop()
	log.Printf("Streak reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	// Run on startup as well as by interval.
	s.sendReminders(context.Background(), time.Now())

	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendReminders(context.Background(), time.Now())
		}
	}
}

func (s *ReminderScheduler) sendReminders(ctx context.Context, now time.Time) {
	entries, err := s.profileRepo.ListAll(ctx)
	if err != nil {
		log.Printf("streak reminders: failed to list profiles: %v", err)
		return
	}

	for _, entry := range entries {
		state := streak.Validate(entry.Profile.Streak, now)
		if !streak.IsAtRisk(state, now) || streak.HasActivityToday(state, now) {
			continue
		}

		// At most one nudge per day per student.
		dedupeKey := "streak_reminder_sent:" + entry.UserID.String()
		sent, err := s.redis.SetNX(ctx, dedupeKey, "1", reminderOncePer).Result()
		if err != nil || !sent {
			continue
		}

		msg := models.WSMessage{
			Type: "streak_at_risk",
			Payload: map[string]interface{}{
				"current_streak": state.Current,
				"message":        streak.MessageFor(state.Current),
			},
		}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := s.redis.Publish(ctx, "student_updates:"+entry.UserID.String(), data).Err(); err != nil {
			log.Printf("streak reminders: publish failed for %s: %v", entry.UserID, err)
		}
	}
}
