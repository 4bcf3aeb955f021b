package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable failure category returned by every
// core operation. Presentation maps kinds to text with HumanMessage.
type ErrorKind string

const (
	KindNotAuthenticated       ErrorKind = "not_authenticated"
	KindNotAuthorized          ErrorKind = "not_authorized"
	KindDuplicateCheckIn       ErrorKind = "duplicate_checkin"
	KindAlreadyMember          ErrorKind = "already_member"
	KindInvalidOrExpiredToken  ErrorKind = "invalid_or_expired_token"
	KindMaxUsesReached         ErrorKind = "invite_max_uses_reached"
	KindCheckInNotFound        ErrorKind = "checkin_not_found"
	KindNotPendingManual       ErrorKind = "not_pending_manual"
	KindCannotSelfApprove      ErrorKind = "cannot_self_approve"
	KindAdminMustTransferFirst ErrorKind = "admin_must_transfer_first"
	KindInvalidLocation        ErrorKind = "invalid_location"
	KindNoFencesConfigured     ErrorKind = "no_fences_configured"
	KindOutsideFenceRadius     ErrorKind = "outside_fence_radius"
	KindInvalidTimezone        ErrorKind = "invalid_timezone"
	KindTransientUnavailable   ErrorKind = "transient_unavailable"
	KindLocationUnavailable    ErrorKind = "location_unavailable"
	KindGroupNotFound          ErrorKind = "group_not_found"
	KindInvalidArgument        ErrorKind = "invalid_argument"
)

// Error is a typed domain failure.
type Error struct {
	Kind    ErrorKind
	Message string

	// Set only for KindOutsideFenceRadius.
	FenceName string
	DistanceM float64

	cause error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Transient wraps a storage or network failure.
func Transient(cause error) *Error {
	return &Error{Kind: KindTransientUnavailable, Message: "service temporarily unavailable", cause: cause}
}

// OutsideFence carries the nearest fence and how far away the caller was.
func OutsideFence(fenceName string, distanceM float64) *Error {
	return &Error{
		Kind:      KindOutsideFenceRadius,
		Message:   fmt.Sprintf("outside radius, nearest: %s", fenceName),
		FenceName: fenceName,
		DistanceM: distanceM,
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so errors.Is(err, ErrDuplicateCheckIn) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is comparisons.
var (
	ErrNotAuthenticated       = NewError(KindNotAuthenticated, "not authenticated")
	ErrNotAuthorized          = NewError(KindNotAuthorized, "not authorized")
	ErrDuplicateCheckIn       = NewError(KindDuplicateCheckIn, "already checked in today")
	ErrAlreadyMember          = NewError(KindAlreadyMember, "already a member of this group")
	ErrInvalidOrExpiredToken  = NewError(KindInvalidOrExpiredToken, "invite is invalid or has expired")
	ErrMaxUsesReached         = NewError(KindMaxUsesReached, "invite has reached its maximum uses")
	ErrCheckInNotFound        = NewError(KindCheckInNotFound, "check-in not found")
	ErrNotPendingManual       = NewError(KindNotPendingManual, "check-in is not pending manual approval")
	ErrCannotSelfApprove      = NewError(KindCannotSelfApprove, "cannot approve your own check-in")
	ErrAdminMustTransferFirst = NewError(KindAdminMustTransferFirst, "transfer the admin role first")
	ErrNoFencesConfigured     = NewError(KindNoFencesConfigured, "no gym locations are set for this group")
	ErrGroupNotFound          = NewError(KindGroupNotFound, "group not found")
)

// KindOf extracts the kind of err. Untyped errors are reported as transient.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransientUnavailable
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

var humanMessages = map[ErrorKind]string{
	KindNotAuthenticated:       "Please sign in to continue.",
	KindNotAuthorized:          "You don't have permission to perform this action.",
	KindDuplicateCheckIn:       "You've already checked in today.",
	KindAlreadyMember:          "Already a member of this group.",
	KindInvalidOrExpiredToken:  "This invite link is invalid or has expired.",
	KindMaxUsesReached:         "This invite link has reached its maximum uses.",
	KindCheckInNotFound:        "Check-in not found.",
	KindNotPendingManual:       "This check-in is not pending manual approval.",
	KindCannotSelfApprove:      "You cannot approve your own check-in.",
	KindAdminMustTransferFirst: "Admins cannot leave groups with other members. Transfer admin role first.",
	KindInvalidLocation:        "Location coordinates or radius are out of range.",
	KindNoFencesConfigured:     "No gym locations are set for this group. Ask an admin to add one.",
	KindOutsideFenceRadius:     "You are outside the gym radius.",
	KindInvalidTimezone:        "Unknown timezone.",
	KindTransientUnavailable:   "Network error. Please check your connection and try again.",
	KindLocationUnavailable:    "Location unavailable. You can request a manual check-in.",
	KindGroupNotFound:          "Group not found.",
	KindInvalidArgument:        "Invalid request.",
}

// HumanMessage is the user-facing text for err.
func HumanMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindOutsideFenceRadius {
		return fmt.Sprintf("Outside radius. Nearest: %s (%s away).", e.FenceName, FormatDistance(e.DistanceM))
	}
	if msg, ok := humanMessages[KindOf(err)]; ok {
		return msg
	}
	return "An unknown error occurred."
}

// FormatDistance renders meters as "850 m" or "1.2 km".
func FormatDistance(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%d m", int(m+0.5))
	}
	return fmt.Sprintf("%.1f km", m/1000)
}

// Expected reports whether the failure is a normal domain outcome rather
// than an infrastructure fault.
func (e *Error) Expected() bool {
	return e.Kind != KindTransientUnavailable
}
