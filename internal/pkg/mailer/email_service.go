package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReviewRequested(toEmail, documentId, fileName string, confidence float64) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail, frontendURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// SendReviewRequested notifies the review inbox that a processed document
// failed the confidence gate.
func (s *emailService) SendReviewRequested(toEmail, documentId, fileName string, confidence float64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Review needed: %s", fileName))

	reviewLink := fmt.Sprintf("%s/documents/%s", s.frontendURL, documentId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Document needs human review</h2>
			<p><strong>%s</strong> finished processing with an overall confidence of <strong>%.0f%%</strong>.</p>
			<p>Extracted fields may be incomplete or wrong. Please verify them against the source document.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Document</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, fileName, confidence*100, reviewLink, reviewLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send review request for %s: %v\n", documentId, err)
		return err
	}

	return nil
}
