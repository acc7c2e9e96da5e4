package events

import (
	"context"
	"fmt"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/pkg/mailer"
)

// AccountLookup resolves accounts for notification addressing.
type AccountLookup interface {
	GetByID(ctx context.Context, id uint) (models.Account, error)
}

// MailNotifier e-mails the student when the tutor decides or records a payment.
type MailNotifier struct {
	sender   mailer.Sender
	accounts AccountLookup
}

// NewMailNotifier returns nil when no sender is configured.
func NewMailNotifier(sender mailer.Sender, accounts AccountLookup) *MailNotifier {
	if sender == nil || accounts == nil {
		return nil
	}
	return &MailNotifier{sender: sender, accounts: accounts}
}

// Name implements Publisher.
func (n *MailNotifier) Name() string {
	return "mail"
}

// Publish implements Publisher. Submissions are not mailed.
func (n *MailNotifier) Publish(ctx context.Context, event EnrollmentEvent) error {
	if event.Type == TypeSubmitted {
		return nil
	}

	student, err := n.accounts.GetByID(ctx, event.StudentID)
	if err != nil {
		return fmt.Errorf("load student %d: %w", event.StudentID, err)
	}
	tutor, err := n.accounts.GetByID(ctx, event.TutorID)
	if err != nil {
		return fmt.Errorf("load tutor %d: %w", event.TutorID, err)
	}

	msg := composeMessage(event, student, tutor)
	return n.sender.Send(ctx, msg)
}

func composeMessage(event EnrollmentEvent, student, tutor models.Account) mailer.Message {
	msg := mailer.Message{ToName: student.FullName, ToAddress: student.Email}

	switch event.Type {
	case TypeApproved:
		msg.Subject = "Your enrollment was approved"
		msg.PlainText = fmt.Sprintf("Hi %s,\n\n%s approved your enrollment. Content unlocks once your first payment is recorded.", student.FullName, tutor.FullName)
	case TypeRejected:
		msg.Subject = "Your enrollment was declined"
		msg.PlainText = fmt.Sprintf("Hi %s,\n\n%s declined your enrollment request.", student.FullName, tutor.FullName)
	case TypePaymentRecorded:
		amount := 0.0
		if event.Amount != nil {
			amount = *event.Amount
		}
		msg.Subject = "Payment recorded"
		msg.PlainText = fmt.Sprintf("Hi %s,\n\n%s recorded your payment of %.2f for %s.", student.FullName, tutor.FullName, amount, event.Period)
	default:
		msg.Subject = "Enrollment update"
		msg.PlainText = fmt.Sprintf("Hi %s,\n\nYour enrollment with %s is now %s.", student.FullName, tutor.FullName, event.Status)
	}
	return msg
}
