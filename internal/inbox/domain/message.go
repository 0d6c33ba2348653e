// Package domain contains the inbox context: email messages and the
// workload analysis derived from them.
package domain

import "time"

// EmailMessage is one fetched email, reduced to the fields the analyzer
// inspects. ReceivedAt may be zero when the provider omitted a date; such
// messages still count toward keyword totals but not hourly patterns.
type EmailMessage struct {
	ID         string
	Subject    string
	Body       string
	Sender     string
	ReceivedAt time.Time
}
