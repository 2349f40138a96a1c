package email

import (
	"context"
	"fmt"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send is a stand-in delivery channel: it prints instead of talking to an
// SMTP relay.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	fmt.Printf("send email to %s: %s - %s\n", to, subject, body)
	return nil
}
