package domain

import "time"

// SystemSettings is a singleton document holding the global borrowing
// policy. It is only ever mutated through validated updates.
type SystemSettings struct {
	MaxLoanDuration       int        `json:"maxLoanDuration"`               // days, 1-365
	MaxAdvanceBookingDays int        `json:"maxAdvanceBookingDays"`         // days, 1-365
	DefaultCategoryLimit  int        `json:"defaultCategoryLimit"`          // 1-100
	LoanReturnStartTime   *string    `json:"loanReturnStartTime,omitempty"` // "HH:mm"
	LoanReturnEndTime     *string    `json:"loanReturnEndTime,omitempty"`   // "HH:mm"
	DiscordEnabled        bool       `json:"discordEnabled"`
	DiscordWebhookURL     *string    `json:"discordWebhookUrl,omitempty"` // sensitive
	LastUpdated           *time.Time `json:"lastUpdated,omitempty"`
	LastUpdatedBy         *string    `json:"lastUpdatedBy,omitempty"`
}

// DefaultSettings returns the values the singleton is initialized with on
// first access.
func DefaultSettings() *SystemSettings {
	return &SystemSettings{
		MaxLoanDuration:       14,
		MaxAdvanceBookingDays: 30,
		DefaultCategoryLimit:  3,
		DiscordEnabled:        false,
	}
}

// CategoryLimit caps how many items one user may hold in a category at the
// same time. Limit 0 disables borrowing for the category entirely; absence
// of a record means SystemSettings.DefaultCategoryLimit applies.
type CategoryLimit struct {
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Limit        int       `json:"limit"`
	UpdatedBy    string    `json:"updatedBy"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const RecurringPatternYearly = "yearly"

// ClosedDate is a calendar day on which borrowing and returning are
// disallowed. A recurring entry matches any year sharing month and day.
type ClosedDate struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	Reason           string    `json:"reason"`
	IsRecurring      bool      `json:"isRecurring"`
	RecurringPattern string    `json:"recurringPattern,omitempty"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Matches reports whether this entry closes the given calendar day.
// Time-of-day is ignored.
func (c *ClosedDate) Matches(day time.Time) bool {
	if c.IsRecurring && c.RecurringPattern == RecurringPatternYearly {
		return c.Date.Month() == day.Month() && c.Date.Day() == day.Day()
	}
	y1, m1, d1 := c.Date.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
