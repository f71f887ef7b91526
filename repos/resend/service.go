package resend

import (
	"context"
	"fmt"
	"html"
	"time"

	resend "github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/planner-api/planner/pkg/auth"
	store "github.com/planner-api/planner/repos/events"
	"github.com/planner-api/planner/repos/recipes"
)

const DefaultFrom = "onboarding@resend.dev"

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Service mails users when an event lands in their calendar.
type Service struct {
	emails emailSender
	from   string
	loc    *time.Location
	log    *zap.Logger
}

// NewService creates a mailer sending from the given address.
func NewService(apiKey, from string, loc *time.Location, log *zap.Logger) *Service {
	return newService(resend.NewClient(apiKey).Emails, from, loc, log)
}

func newService(emails emailSender, from string, loc *time.Location, log *zap.Logger) *Service {
	if from == "" {
		from = DefaultFrom
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{emails: emails, from: from, loc: loc, log: log}
}

// NotifySynced mails the requesting user about a synced event. Users without
// an email address on their identity are skipped.
func (s *Service) NotifySynced(ctx context.Context, username string, event store.Event, recipe *recipes.Recipe) error {
	identity, ok := auth.FromContext(ctx)
	if !ok || identity.Email == "" {
		s.log.Debug("No email for sync confirmation", zap.String("username", username))
		return nil
	}

	return s.SendSynced(ctx, identity.Email, SyncedMail{
		Username: username,
		Recipe:   recipe.Name,
		Start:    time.Unix(event.Timestamp, 0).In(s.loc),
	})
}

func (s *Service) SendSynced(ctx context.Context, email string, mail SyncedMail) error {
	sent, err := s.emails.SendWithContext(ctx, s.syncedRequest(email, mail))
	if err != nil {
		return fmt.Errorf("send sync confirmation: %w", err)
	}
	s.log.Info("Sync confirmation sent", zap.String("username", mail.Username), zap.String("mailID", sent.Id))
	return nil
}

func (s *Service) syncedRequest(email string, mail SyncedMail) *resend.SendEmailRequest {
	return &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: fmt.Sprintf("%s is in your calendar", mail.Recipe),
		Html:    getEmailTemplate(mail),
	}
}

func getEmailTemplate(mail SyncedMail) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello %s,</h2>
        <p><strong>%s</strong> was added to your Google Calendar for %s.</p>
        <p>Enjoy your meal!</p>
    </div>
</body>
</html>`, html.EscapeString(mail.Username), html.EscapeString(mail.Recipe), mail.Start.Format("Monday 2 January 2006, 15:04 MST"))
}
