package services

import (
	"log"

	"tunesmith/types"
)

// Notifier is the fire-and-forget sink for scan and batch outcomes
type Notifier interface {
	Notify(n types.Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(n types.Notification)

// Notify calls f
func (f NotifierFunc) Notify(n types.Notification) {
	f(n)
}

// LogNotifier writes notifications to the standard logger
type LogNotifier struct{}

// Notify logs the notification
func (LogNotifier) Notify(n types.Notification) {
	log.Printf("[%s] %s: %s", n.Severity, n.Title, n.Description)
}

// MultiNotifier fans a notification out to several sinks
type MultiNotifier []Notifier

// Notify forwards n to every non-nil sink
func (m MultiNotifier) Notify(n types.Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(n)
		}
	}
}
