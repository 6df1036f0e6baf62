package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DeliverySource the part of *amqp.Channel the consumer needs
type DeliverySource interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Consumer 定義審核工作的消費者，將所有必要的依賴注入進來
type Consumer struct {
	channel   DeliverySource
	runner    Runner
	queueName string
	workers   int
}

// NewConsumer 建構 Consumer 實例
func NewConsumer(channel DeliverySource, runner Runner, queueName string, workers int) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{
		channel:   channel,
		runner:    runner,
		queueName: queueName,
		workers:   workers,
	}
}

// StartConsumer 開始消費訊息，直到 ctx 結束或 channel 關閉
func (c *Consumer) StartConsumer(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer tag，留空由系統分配
		false,       // autoAck 為 false，使用手動確認
		false,       // exclusive
		false,       // noLocal
		false,       // noWait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("無法開始消費 RabbitMQ 訊息: %w", err)
	}

	logger.Log.Info("moderation consumer started", zap.String("queue", c.queueName), zap.Int("workers", c.workers))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						logger.Log.Info("RabbitMQ 消費 channel 已關閉")
						return
					}
					c.handle(ctx, d)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
	logger.Log.Info("moderation consumer stopped")
	return nil
}

// handle 成功或同一影片已在處理中就 ack；重試用盡第一次 requeue，再次失敗就丟棄 (關機中斷一律 requeue)
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var job domain.ModerationJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.Log.Error("解析審核工作訊息失敗", zap.Error(err), zap.ByteString("body", d.Body))
		if err := d.Reject(false); err != nil {
			logger.Log.Warn("Reject 訊息失敗", zap.Error(err))
		}
		return
	}

	log := logger.Log.With(zap.String("video_id", job.VideoID))
	log.Info("收到審核工作訊息", zap.String("video_url", job.VideoURL), zap.Bool("redelivered", d.Redelivered))

	result, err := c.runner.RunWithRetry(ctx, job)
	switch {
	case err == nil:
		log.Info("審核工作完成", zap.String("status", result.Status), zap.Strings("reasons", result.Reasons))
		if err := d.Ack(false); err != nil {
			log.Warn("確認訊息失敗", zap.Error(err))
		}
	case errors.Is(err, domain.ErrJobInFlight):
		log.Info("同一影片已在審核中，略過重複訊息")
		if err := d.Ack(false); err != nil {
			log.Warn("確認訊息失敗", zap.Error(err))
		}
	case errors.Is(err, domain.ErrInvalidJob):
		log.Error("審核工作訊息不完整", zap.Error(err))
		if err := d.Reject(false); err != nil {
			log.Warn("Reject 訊息失敗", zap.Error(err))
		}
	default:
		requeue := !d.Redelivered || ctx.Err() != nil
		log.Error("處理審核工作失敗", zap.Error(err), zap.Bool("requeue", requeue))
		if err := d.Nack(false, requeue); err != nil {
			log.Warn("Nack 訊息失敗", zap.Error(err))
		}
	}
}
