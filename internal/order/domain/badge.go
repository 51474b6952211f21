package domain

// Badge is how a status is presented on every screen.
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
	Icon  string `json:"icon"`
}

var badges = map[Status]Badge{
	StatusPending:    {Label: "Awaiting payment", Tone: "yellow", Icon: "clock"},
	StatusPaid:       {Label: "Paid", Tone: "blue", Icon: "credit-card"},
	StatusProcessing: {Label: "Processing", Tone: "indigo", Icon: "clock"},
	StatusShipped:    {Label: "Shipped", Tone: "purple", Icon: "truck"},
	StatusDelivered:  {Label: "Delivered", Tone: "green", Icon: "check-circle"},
	StatusCancelled:  {Label: "Cancelled", Tone: "red", Icon: "alert-circle"},
	StatusRefunded:   {Label: "Refunded", Tone: "gray", Icon: "alert-circle"},
}

func BadgeFor(s Status) Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return Badge{Label: string(s), Tone: "gray", Icon: "package"}
}

var actionLabels = map[Status]string{
	StatusPaid:       "Mark as paid",
	StatusProcessing: "Start processing",
	StatusShipped:    "Mark as shipped",
	StatusDelivered:  "Mark as delivered",
	StatusCancelled:  "Cancel order",
	StatusRefunded:   "Mark as refunded",
}

// ActionLabel is the button text for moving an order into target.
func ActionLabel(target Status) string {
	if l, ok := actionLabels[target]; ok {
		return l
	}
	return string(target)
}
