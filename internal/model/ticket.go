package model

import "time"

// Ticket is a change-management work item as read from the tracker.
// Optional timestamps are nil when the tracker has no value or the value
// could not be parsed.
type Ticket struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	State         string     `json:"state"`
	Priority      int        `json:"priority"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	StateChangeAt *time.Time `json:"state_change_at,omitempty"`
	Assignee      Assignee   `json:"assignee"`
	AreaPath      string     `json:"area_path"`
	RawCategory   string     `json:"raw_category"`
	RawSubType    string     `json:"raw_sub_type"`
	RequestType   string     `json:"request_type"`
	RequesterName string     `json:"requester_name"`
	Link          string     `json:"link,omitempty"`
}

// Assignee identifies who a ticket is assigned to. ID is the tracker's
// opaque identity used for @mentions and may be empty.
type Assignee struct {
	DisplayName string `json:"display_name"`
	ID          string `json:"id,omitempty"`
}

// Unassigned is the display name used when a ticket has no assignee.
const Unassigned = "Unassigned"

// Status is the SLA classification of a projected ticket.
type Status string

const (
	StatusOnTrack       Status = "On Track"
	StatusAtRisk        Status = "At Risk"
	StatusBreached      Status = "Breached"
	StatusPaused        Status = "Paused"
	StatusCompleted     Status = "Completed"
	StatusCompletedLate Status = "Completed Late"
)

// Statuses lists every status in dashboard display order.
var Statuses = []Status{
	StatusBreached,
	StatusAtRisk,
	StatusOnTrack,
	StatusPaused,
	StatusCompletedLate,
	StatusCompleted,
}

// Rank orders statuses for display, most urgent first.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return len(Statuses)
}

// Closed reports whether s is one of the terminal statuses.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCompletedLate
}

// Projection is a ticket enriched with its derived SLA state. It is
// recomputed from the source ticket on every cycle and never stored.
type Projection struct {
	Ticket

	Team             string    `json:"team"`
	Scenario         string    `json:"scenario"`
	AssignedTo       string    `json:"assigned_to"`
	IsOpen           bool      `json:"is_open"`
	IsPaused         bool      `json:"is_paused"`
	IsMondayDeadline bool      `json:"is_monday_deadline"`
	SLADays          int       `json:"sla_days"`
	SLADeadline      time.Time `json:"sla_deadline"`
	SLADisplay       string    `json:"sla_display"`
	Elapsed          int       `json:"elapsed_business_days"`
	Remaining        int       `json:"remaining_business_days"`
	Status           Status    `json:"sla_status"`
	CreatedDay       string    `json:"created_day"`
	Progress         int       `json:"progress"`
	TimeLeft         string    `json:"time_left"`
}

// Notification records that an SLA alert was delivered for a ticket.
type Notification struct {
	TicketID   int       `json:"ticket_id"`
	NotifiedAt time.Time `json:"notified_at"`
}
