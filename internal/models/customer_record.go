package models

import (
	"time"
)

// DateLayout is the wire format for calendar dates (installation date, service history)
const DateLayout = "2006-01-02"

// FreeServicesPerInstall is the number of free service visits granted with a filter installation
const FreeServicesPerInstall = 3

// WaterSource represents where the tested water comes from
type WaterSource string

const (
	WaterSourceBorewell    WaterSource = "Borewell"
	WaterSourceOpenWell    WaterSource = "Open Well"
	WaterSourceCorporation WaterSource = "Corporation"
	WaterSourceOther       WaterSource = "Other"
)

// WaterSources lists the valid water sources in form order
var WaterSources = []WaterSource{
	WaterSourceBorewell,
	WaterSourceOpenWell,
	WaterSourceCorporation,
	WaterSourceOther,
}

// PipelineType represents the customer's pipeline material
type PipelineType string

const (
	PipelineTypePVC  PipelineType = "PVC"
	PipelineTypeUPVC PipelineType = "UPVC"
)

// CustomerRecord is one water test / service visit as stored by the remote API
type CustomerRecord struct {
	ID                string       `json:"id"`
	CustomerName      string       `json:"customerName"`
	Mobile            string       `json:"mobile"`
	Place             string       `json:"place"`
	WaterSource       WaterSource  `json:"waterSource"`
	TDS               string       `json:"tds"`
	IronPPM           string       `json:"ironPPM"`
	PipelineType      PipelineType `json:"pipelineType"`
	Remarks           string       `json:"remarks,omitempty"`
	FilterInstalled   bool         `json:"filterInstalled"`
	FilterImage       string       `json:"filterImage,omitempty"`
	InstallationDate  string       `json:"installationDate,omitempty"`
	FreeServicesTotal int          `json:"freeServicesTotal"`
	ServicesDone      int          `json:"servicesDone"`
	ServiceHistory    []string     `json:"serviceHistory"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// RemainingServices returns how many free services are still available
func (r *CustomerRecord) RemainingServices() int {
	remaining := r.FreeServicesTotal - r.ServicesDone
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasServicesRemaining checks the ledger precondition for logging another free service
func (r *CustomerRecord) HasServicesRemaining() bool {
	return r.ServicesDone < r.FreeServicesTotal
}

// CanAddService reports whether the detail view offers the "add service" action
func (r *CustomerRecord) CanAddService() bool {
	return r.FilterInstalled && r.HasServicesRemaining()
}

// CreatedDate returns the calendar date of creation in the given location
func (r *CustomerRecord) CreatedDate(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return r.CreatedAt.In(loc).Format(DateLayout)
}

// WithService returns a copy of the record with one more service logged on the given date.
// The receiver is left untouched.
func (r CustomerRecord) WithService(date string) CustomerRecord {
	history := make([]string, 0, len(r.ServiceHistory)+1)
	history = append(history, r.ServiceHistory...)
	history = append(history, date)

	r.ServiceHistory = history
	r.ServicesDone++
	return r
}

// ServiceUpdate is the partial body sent when a service visit is logged
type ServiceUpdate struct {
	ServicesDone   int      `json:"servicesDone"`
	ServiceHistory []string `json:"serviceHistory"`
}

// EntryDraft holds the values captured by the intake form before the record is built
type EntryDraft struct {
	CustomerName     string       `json:"customerName" validate:"required"`
	Mobile           string       `json:"mobile" validate:"required,len=10,number"`
	Place            string       `json:"place" validate:"required"`
	WaterSource      WaterSource  `json:"waterSource" validate:"oneof=Borewell 'Open Well' Corporation Other"`
	TDS              string       `json:"tds" validate:"required"`
	IronPPM          string       `json:"ironPPM" validate:"required"`
	PipelineType     PipelineType `json:"pipelineType" validate:"oneof=PVC UPVC"`
	Remarks          string       `json:"remarks"`
	FilterInstalled  bool         `json:"filterInstalled"`
	FilterImage      string       `json:"filterImage" validate:"omitempty,url"`
	InstallationDate string       `json:"installationDate" validate:"omitempty,datetime=2006-01-02"`
}

// InstallationStatus is the installation predicate of the structured filter
type InstallationStatus string

const (
	InstallationAll          InstallationStatus = "all"
	InstallationInstalled    InstallationStatus = "true"
	InstallationNotInstalled InstallationStatus = "false"
)

// FilterCriteria is the structured dashboard filter. The zero value matches everything.
type FilterCriteria struct {
	InstallationStatus InstallationStatus `json:"installationStatus"`
	Place              string             `json:"place"`
	Date               string             `json:"date"`
}

// IsZero reports whether the criteria select the whole snapshot
func (c FilterCriteria) IsZero() bool {
	return (c.InstallationStatus == "" || c.InstallationStatus == InstallationAll) &&
		c.Place == "" && c.Date == ""
}
