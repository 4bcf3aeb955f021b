package domain

import "time"

type CheckInMethod string

const (
	CheckInMethodGeo    CheckInMethod = "GEO"
	CheckInMethodManual CheckInMethod = "MANUAL"
)

type CheckInStatus string

const (
	CheckInStatusPending  CheckInStatus = "PENDING"
	CheckInStatusApproved CheckInStatus = "APPROVED"
	CheckInStatusRejected CheckInStatus = "REJECTED"
)

// CheckIn is one member's attendance claim for one group-local day.
// (GroupID, UserID, CheckinDate) is unique.
type CheckIn struct {
	ID           string        `json:"id"`
	GroupID      string        `json:"group_id"`
	UserID       string        `json:"user_id"`
	CheckinDate  string        `json:"checkin_date"`
	Method       CheckInMethod `json:"method"`
	Status       CheckInStatus `json:"status"`
	Lat          *float64      `json:"lat,omitempty"`
	Lng          *float64      `json:"lng,omitempty"`
	RejectReason *string       `json:"reject_reason,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UserName     string        `json:"user_name,omitempty"` // populated by pending listings
}

// CanTransition reports whether status may move to next.
// APPROVED and REJECTED are terminal.
func (c *CheckIn) CanTransition(next CheckInStatus) bool {
	if c.Status != CheckInStatusPending {
		return false
	}
	return next == CheckInStatusApproved || next == CheckInStatusRejected
}

// IsPendingManual is the precondition shared by approve and reject.
func (c *CheckIn) IsPendingManual() bool {
	return c.Status == CheckInStatusPending && c.Method == CheckInMethodManual
}

// NewManualCheckIn builds a PENDING manual request.
func NewManualCheckIn(groupID, userID, date string) *CheckIn {
	return &CheckIn{
		GroupID:     groupID,
		UserID:      userID,
		CheckinDate: date,
		Method:      CheckInMethodManual,
		Status:      CheckInStatusPending,
	}
}

// NewGeoCheckIn builds an already-approved GPS check-in.
func NewGeoCheckIn(groupID, userID, date string, lat, lng float64) *CheckIn {
	return &CheckIn{
		GroupID:     groupID,
		UserID:      userID,
		CheckinDate: date,
		Method:      CheckInMethodGeo,
		Status:      CheckInStatusApproved,
		Lat:         &lat,
		Lng:         &lng,
	}
}

// ManualApproval is the append-only audit record of a peer approval.
type ManualApproval struct {
	ID             string    `json:"id"`
	CheckInID      string    `json:"check_in_id"`
	ApproverUserID string    `json:"approver_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
