package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	"github.com/innovex/ideahub-api/pkg/jobs"
	"github.com/innovex/ideahub-api/pkg/mailer"
)

const (
	jobTypeEmail                = "email"
	jobTypeAnnouncementDelivery = "announcement_delivery"
)

type emailPayload struct {
	To      string
	Subject string
	Body    string
}

type announcementDeliveryPayload struct {
	AnnouncementID string
	StaffID        string
	DepartmentID   *string
	To             string
	Subject        string
	Body           string
}

type deliveryRecorder interface {
	RecordDelivery(ctx context.Context, record *models.StaffAnnouncement) error
}

// NotificationService dispatches email notifications through a background
// worker queue so request handlers never block on SMTP.
type NotificationService struct {
	sender     mailer.Sender
	deliveries deliveryRecorder
	queue      *jobs.Queue
	logger     *zap.Logger
}

// NewNotificationService builds the notification service and its queue.
// Start must be called before any notification is accepted.
func NewNotificationService(sender mailer.Sender, deliveries deliveryRecorder, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, deliveries: deliveries, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handle, cfg)
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyIdeaSubmitted emails the department coordinator about a new idea.
func (s *NotificationService) NotifyIdeaSubmitted(coordinator *models.Staff, author *models.Staff, idea *models.Idea) {
	if coordinator == nil {
		return
	}
	authorName := "an anonymous staff member"
	if author != nil && !idea.IsAnonymous {
		authorName = author.Name
	}
	s.enqueueEmail(emailPayload{
		To:      coordinator.Email,
		Subject: fmt.Sprintf("New idea submitted: %s", idea.Title),
		Body:    fmt.Sprintf("A new idea %q was submitted by %s.", idea.Title, authorName),
	})
}

// NotifyCommentAdded emails the idea author about a new comment.
func (s *NotificationService) NotifyCommentAdded(ideaAuthor *models.Staff, commenter *models.Staff, idea *models.Idea, comment *models.Comment) {
	if ideaAuthor == nil || (commenter != nil && ideaAuthor.ID == commenter.ID) {
		return
	}
	commenterName := "someone"
	if commenter != nil && !comment.IsAnonymous {
		commenterName = commenter.Name
	}
	s.enqueueEmail(emailPayload{
		To:      ideaAuthor.Email,
		Subject: fmt.Sprintf("New comment on your idea: %s", idea.Title),
		Body:    fmt.Sprintf("%s commented on your idea %q.", commenterName, idea.Title),
	})
}

// DispatchAnnouncement fans the announcement out to every recipient. Each
// recipient gets its own job; the delivery outcome is recorded per staff
// member rather than retried, so the audit trail stays one row per person.
func (s *NotificationService) DispatchAnnouncement(announcement *models.Announcement, recipients []models.Staff) {
	for _, recipient := range recipients {
		payload := announcementDeliveryPayload{
			AnnouncementID: announcement.ID,
			StaffID:        recipient.ID,
			DepartmentID:   recipient.DepartmentID,
			To:             recipient.Email,
			Subject:        announcement.Subject,
			Body:           announcement.Content,
		}
		if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeAnnouncementDelivery, Payload: payload}); err != nil {
			s.logger.Warn("failed to enqueue announcement delivery",
				zap.String("announcement_id", announcement.ID),
				zap.String("staff_id", recipient.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *NotificationService) enqueueEmail(payload emailPayload) {
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeEmail, Payload: payload}); err != nil {
		s.logger.Warn("failed to enqueue email", zap.String("to", payload.To), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobTypeEmail:
		payload, ok := job.Payload.(emailPayload)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		return s.sender.Send(payload.To, payload.Subject, payload.Body)

	case jobTypeAnnouncementDelivery:
		payload, ok := job.Payload.(announcementDeliveryPayload)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		status := models.DeliverySuccess
		if err := s.sender.Send(payload.To, payload.Subject, payload.Body); err != nil {
			status = models.DeliveryFailed
			s.logger.Warn("announcement delivery failed",
				zap.String("announcement_id", payload.AnnouncementID),
				zap.String("staff_id", payload.StaffID),
				zap.Error(err),
			)
		}
		if s.deliveries != nil {
			if err := s.deliveries.RecordDelivery(ctx, &models.StaffAnnouncement{
				AnnouncementID: payload.AnnouncementID,
				StaffID:        payload.StaffID,
				DepartmentID:   payload.DepartmentID,
				Status:         status,
			}); err != nil {
				s.logger.Warn("failed to record announcement delivery", zap.Error(err))
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown job type %s", job.Type)
	}
}
