package domain

// Side order book side.
type Side string

const (
	// SideBid buy side, best (highest) price first.
	SideBid Side = "bids"
	// SideAsk sell side, best (lowest) price first.
	SideAsk Side = "asks"
)

// String returns the string representation.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the Side value is valid.
func (s Side) IsValid() bool {
	return s == SideBid || s == SideAsk
}
