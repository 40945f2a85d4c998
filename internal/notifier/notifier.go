// Package notifier
package notifier

import (
	"log"
	"time"
)

// Notifier interface for sending notifications (e.g., Telegram).
type Notifier interface {
	Send(msg string) error
	SendWithRetry(msg string) error
}

// Noop discards notifications; used when no channel is configured.
type Noop struct{}

func (Noop) Send(string) error          { return nil }
func (Noop) SendWithRetry(string) error { return nil }

// retrier wraps a send function with fixed-delay retries.
func retrier(send func(string) error, attempts int, delay time.Duration) func(string) error {
	return func(msg string) error {
		var err error
		for i := 0; i < attempts; i++ {
			if err = send(msg); err == nil {
				return nil
			}
			log.Printf("notifier | send attempt %d/%d failed: %v", i+1, attempts, err)
			if i < attempts-1 {
				time.Sleep(delay)
			}
		}
		return err
	}
}
