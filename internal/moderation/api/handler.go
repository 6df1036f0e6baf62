package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"video_moderation_service/internal/moderation/app"
	"video_moderation_service/internal/moderation/domain"
	"video_moderation_service/internal/moderation/repository"
	"video_moderation_service/pkg/database"
	"video_moderation_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ModerationHandler moderation trigger surface
type ModerationHandler struct {
	Runner    app.Runner
	Queue     database.RabbitRepo
	Videos    repository.VideoRepo
	QueueName string
}

// NewModerationHandler create moderation handler
func NewModerationHandler(runner app.Runner, queue database.RabbitRepo, videos repository.VideoRepo, queueName string) *ModerationHandler {
	if queueName == "" {
		queueName = domain.QueueName
	}
	return &ModerationHandler{
		Runner:    runner,
		Queue:     queue,
		Videos:    videos,
		QueueName: queueName,
	}
}

// ConnectCheck check service start
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("moderation service start!")
}

// DebugLogFlag toggle debug log flag
func DebugLogFlag(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	statusStr := query.Get("status")
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	logger.Log.Info("debug", zap.Bool("status", status))
	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}

func parseJob(c *fiber.Ctx) (domain.ModerationJob, error) {
	var job domain.ModerationJob
	if err := c.BodyParser(&job); err != nil {
		return job, fmt.Errorf("%w: %v", domain.ErrInvalidJob, err)
	}
	job.VideoID = strings.TrimSpace(job.VideoID)
	job.VideoURL = strings.TrimSpace(job.VideoURL)
	if job.VideoID == "" || job.VideoURL == "" {
		return job, fmt.Errorf("%w: video_id and video_url are required", domain.ErrInvalidJob)
	}
	return job, nil
}

// Enqueue publish one moderation job to the work queue
func (h *ModerationHandler) Enqueue(c *fiber.Ctx) error {
	job, err := parseJob(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	body, err := json.Marshal(job)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to encode job"})
	}
	err = h.Queue.Publish("", h.QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		logger.Log.Errorf("publish moderation job failed", err, zap.String("video_id", job.VideoID))
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "Failed to enqueue job"})
	}

	logger.Log.Info("moderation job enqueued", zap.String("video_id", job.VideoID))
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"queued": true, "video_id": job.VideoID})
}

// Run moderate one video synchronously and return the JobResult
func (h *ModerationHandler) Run(c *fiber.Ctx) error {
	job, err := parseJob(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.Runner.RunWithRetry(c.UserContext(), job)
	switch {
	case err == nil:
		return c.JSON(res)
	case errors.Is(err, domain.ErrInvalidJob):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrJobInFlight):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "moderation already in progress for this video"})
	default:
		// 不回傳內部錯誤細節
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "moderation failed, the job will need to be retried"})
	}
}

// GetVideo current moderation state of a video
func (h *ModerationHandler) GetVideo(c *fiber.Ctx) error {
	videoID := c.Params("video_id")
	v, err := h.Videos.GetByID(c.UserContext(), videoID)
	if errors.Is(err, domain.ErrVideoNotFound) {
		// 被拒絕的影片已經刪除
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Video not found"})
	}
	if err != nil {
		logger.Log.Errorf("get video failed", err, zap.String("video_id", videoID))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load video"})
	}
	return c.JSON(fiber.Map{
		"video_id":          v.ID,
		"moderation_status": v.ModerationStatus,
		"moderation_notes":  v.ModerationNotes,
		"moderation_result": json.RawMessage(v.ModerationResult),
		"updated_at":        v.UpdatedAt,
	})
}
