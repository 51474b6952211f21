package domain

import "time"

// track is the linear happy path. Cancelled and refunded orders are off it.
var track = []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered}

// ProgressIndex returns the position of s on the fulfillment track.
func ProgressIndex(s Status) (int, bool) {
	for i, t := range track {
		if t == s {
			return i, true
		}
	}
	return -1, false
}

// ProgressFraction returns the progress bar fill in percent.
// onTrack is false for statuses that must be shown as a terminal badge instead.
func ProgressFraction(s Status) (percent int, onTrack bool) {
	idx, ok := ProgressIndex(s)
	if !ok {
		return 0, false
	}
	return idx * 100 / (len(track) - 1), true
}

type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepPending   StepState = "pending"
)

type TimelineStep struct {
	Status Status     `json:"status"`
	Label  string     `json:"label"`
	State  StepState  `json:"state"`
	At     *time.Time `json:"at,omitempty"`
}

// Timeline classifies every track step against the order's current status.
// Off-track orders get every step pending.
func Timeline(o Order) []TimelineStep {
	cur, onTrack := ProgressIndex(o.Status)
	steps := make([]TimelineStep, len(track))
	for i, s := range track {
		state := StepPending
		switch {
		case !onTrack:
		case i < cur:
			state = StepCompleted
		case i == cur:
			state = StepCurrent
		}
		step := TimelineStep{Status: s, Label: stepLabels[s], State: state}
		if state != StepPending {
			at := o.UpdatedAt
			if i == 0 {
				at = o.CreatedAt
			}
			if !at.IsZero() {
				step.At = &at
			}
		}
		steps[i] = step
	}
	return steps
}

var stepLabels = map[Status]string{
	StatusPending:    "Order placed",
	StatusPaid:       "Payment",
	StatusProcessing: "Preparation",
	StatusShipped:    "Shipping",
	StatusDelivered:  "Delivery",
}
