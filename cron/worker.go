package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"medivoice/config"
	appointmentRepo "medivoice/database/repository/appointment"
	"medivoice/models"
	"medivoice/services/tasks"
	"medivoice/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the async reminder worker in background.
func InitReminderWorker(repo appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(repo))

	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(repo appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("reminder task has invalid payload", zap.Error(err))
			return err
		}

		record, err := repo.GetByID(ctx, p.RecordID)
		if err != nil {
			logger.Warn("reminder fired for unknown appointment record",
				zap.String("recordId", p.RecordID), zap.Error(err))
			return nil
		}
		if record.Reminded {
			return nil
		}

		// The calendar invite already carries the notification channel;
		// this marks the reminder as delivered for auditing.
		logger.Info("appointment reminder due",
			zap.String("recordId", p.RecordID),
			zap.String("patient", p.PatientName),
			zap.String("start", p.StartISO),
		)
		if err := repo.MarkReminded(ctx, p.RecordID); err != nil {
			logger.Warn("failed to mark reminder delivered",
				zap.String("recordId", p.RecordID), zap.Error(err))
			return err
		}
		return nil
	}
}
