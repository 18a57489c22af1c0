package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dining/internal/config"
	"dining/internal/meal"
	"dining/internal/queue"
	"dining/internal/store"
)

// Worker consumes domain events from the Redis queue and writes notification
// log lines. The domain store lives inside the API process, so every event
// carries its full record snapshot; the worker never reads state back.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend == "memory" {
		log.Fatal("worker needs QUEUE_BACKEND=redis; the in-memory queue does not cross processes")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	q := queue.NewRedisQueue(redisClient.Client, "dining:events")

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for events...")
	for msg := range messages {
		switch msg.Type {
		case queue.EventTokenPurchased:
			var t meal.Token
			if err := json.Unmarshal(msg.Body, &t); err != nil {
				log.Printf("bad %s payload: %v", msg.Type, err)
				continue
			}
			log.Printf("notify student %s: %d-day %s token active until %s (cost %.2f)",
				t.StudentID, t.Duration, t.MealType, t.EndDate.Format("2006-01-02"), t.TotalCost)

		case queue.EventCancellationRequested:
			var cd meal.CancelledDay
			if err := json.Unmarshal(msg.Body, &cd); err != nil {
				log.Printf("bad %s payload: %v", msg.Type, err)
				continue
			}
			log.Printf("notify managers: %s cancellation for %s by student %s awaits review (refund %.2f)",
				cd.MealType, cd.CancelledDate.Format("2006-01-02"), cd.StudentID, cd.RefundAmount)

		case queue.EventCancellationResolved:
			var cd meal.CancelledDay
			if err := json.Unmarshal(msg.Body, &cd); err != nil {
				log.Printf("bad %s payload: %v", msg.Type, err)
				continue
			}
			log.Printf("notify student %s: cancellation for %s was %s by %s",
				cd.StudentID, cd.CancelledDate.Format("2006-01-02"), cd.Status, cd.ApprovedBy)

		case queue.EventPaymentCompleted:
			var p meal.PaymentTransaction
			if err := json.Unmarshal(msg.Body, &p); err != nil {
				log.Printf("bad %s payload: %v", msg.Type, err)
				continue
			}
			log.Printf("notify student %s: %.2f added via %s (ref %s)",
				p.StudentID, p.Amount, p.Method, p.TransactionRef)

		case queue.EventDiningMonthOpened:
			var dm meal.DiningMonth
			if err := json.Unmarshal(msg.Body, &dm); err != nil {
				log.Printf("bad %s payload: %v", msg.Type, err)
				continue
			}
			log.Printf("notify hall: dining month %s to %s is now open",
				dm.StartDate.Format("2006-01-02"), dm.EndDate.Format("2006-01-02"))

		default:
			log.Printf("ignoring event type %q", msg.Type)
		}
	}

	log.Println("worker stopped")
}
