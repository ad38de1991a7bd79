package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"examtrack-backend/internal/models"
	"examtrack-backend/internal/repository"
)

const ReportQueue = "queue:question-reports"

// Pool drains the question-report queue: each job becomes a persisted
// report and an acknowledgement event for the reporter.
type Pool struct {
	redis       *redis.Client
	reportRepo  *repository.ReportRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, reportRepo *repository.ReportRepo, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		reportRepo:  reportRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, ReportQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job models.ReportJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse report job: %v", id, err)
			continue
		}

		// Skip jobs another worker already claimed
		lockKey := fmt.Sprintf("report_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		log.Printf("Worker %d: processing report %s (exam: %s)", id, job.ID, job.ExamID)

		report := &models.QuestionReport{
			ID:           job.ID,
			UserID:       job.UserID,
			ExamID:       job.ExamID,
			QuestionJSON: job.Question,
			Reason:       job.Reason,
		}
		if err := p.reportRepo.Create(ctx, report); err != nil {
			log.Printf("Worker %d: failed to persist report %s: %v", id, job.ID, err)
			// Drop the lock so a retry can claim the job again
			p.redis.Del(ctx, lockKey)
			p.redis.LPush(ctx, ReportQueue, result[1])
			time.Sleep(5 * time.Second)
			continue
		}

		p.publishAck(ctx, job)
	}
}

func (p *Pool) publishAck(ctx context.Context, job models.ReportJob) {
	msg := models.WSMessage{
		Type: "report_received",
		Payload: map[string]interface{}{
			"report_id": job.ID,
			"exam_id":   job.ExamID,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	p.redis.Publish(ctx, "student_updates:"+job.UserID.String(), data)
}
