// Package mail delivers notification email for the auth flows. Delivery is a
// best-effort external collaborator: a send failure never changes the HTTP
// response already chosen by the caller.
package mail

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(msg Message) error
}
