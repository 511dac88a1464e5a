package models

import "time"

// Channel represents a notification delivery channel
type Channel string

const (
	ChannelAPI      Channel = "api"
	ChannelWhatsApp Channel = "whatsapp"
)

// Notification carries the human-relevant fields of a new water test to the admin
type Notification struct {
	CustomerName string       `json:"customerName"`
	Mobile       string       `json:"mobile"`
	Place        string       `json:"place"`
	WaterSource  WaterSource  `json:"waterSource"`
	TDS          string       `json:"tds"`
	IronPPM      string       `json:"ironPPM"`
	PipelineType PipelineType `json:"pipelineType"`
}

// NewNotification builds the notification for a freshly created record
func NewNotification(r *CustomerRecord) *Notification {
	return &Notification{
		CustomerName: r.CustomerName,
		Mobile:       r.Mobile,
		Place:        r.Place,
		WaterSource:  r.WaterSource,
		TDS:          r.TDS,
		IronPPM:      r.IronPPM,
		PipelineType: r.PipelineType,
	}
}

// DispatchStatus represents valid dispatch log statuses
type DispatchStatus string

const (
	DispatchStatusPending DispatchStatus = "pending"
	DispatchStatusSent    DispatchStatus = "sent"
	DispatchStatusFailed  DispatchStatus = "failed"
)

// NotificationDispatch is one delivery attempt recorded by the worker
type NotificationDispatch struct {
	ID        int            `json:"id" db:"id"`
	JobID     string         `json:"job_id" db:"job_id"`
	RecordID  string         `json:"record_id" db:"record_id"`
	Mobile    string         `json:"mobile" db:"mobile"`
	Channel   Channel        `json:"channel" db:"channel"`
	Status    DispatchStatus `json:"status" db:"status"`
	LastError *string        `json:"last_error,omitempty" db:"last_error"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
