package model

// DevotionPrefs configures daily devotion notifications.
type DevotionPrefs struct {
	Enabled  bool   `json:"enabled"`
	Time     string `json:"time"` // HH:MM, recipient-local
	Language string `json:"language,omitempty"`
}

// EventPrefs configures event reminder notifications.
type EventPrefs struct {
	Enabled   bool     `json:"enabled"`
	Reminders []string `json:"reminders"` // offsets before the event, e.g. "24h", "1h", "15m"
	Language  string   `json:"language,omitempty"`
}

// PrayerPrefs configures prayer request notifications.
type PrayerPrefs struct {
	Enabled    bool   `json:"enabled"`
	UrgentOnly bool   `json:"urgent_only"`
	Language   string `json:"language,omitempty"`
}

// CommunityPrefs configures community activity notifications.
type CommunityPrefs struct {
	Enabled        bool   `json:"enabled"`
	GroupMessages  bool   `json:"group_messages"`
	Achievements   bool   `json:"achievements"`
	WeeklyCheckins bool   `json:"weekly_checkins"`
	Language       string `json:"language,omitempty"`
}

// QuietHours is a recipient-local time window during which nothing is
// delivered. start > end means the window crosses midnight; start == end
// means the window covers the whole day.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // HH:MM
	End     string `json:"end"`   // HH:MM
}

// Preferences is one recipient's notification configuration.
type Preferences struct {
	Enabled            bool           `json:"enabled"`
	Devotions          DevotionPrefs  `json:"devotions"`
	Events             EventPrefs     `json:"events"`
	Prayers            PrayerPrefs    `json:"prayers"`
	Community          CommunityPrefs `json:"community"`
	QuietHours         QuietHours     `json:"quiet_hours"`
	BatchNotifications bool           `json:"batch_notifications"`
	MaxPerDay          int            `json:"max_per_day"`
}

// DefaultPreferences is the fully-specified record used whenever a
// recipient has never stored preferences. Absent preferences never mean
// "send nothing" or "send everything unfiltered".
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:   true,
		Devotions: DevotionPrefs{Enabled: true, Time: "07:00"},
		Events:    EventPrefs{Enabled: true, Reminders: []string{"24h", "1h", "15m"}},
		Prayers:   PrayerPrefs{Enabled: true},
		Community: CommunityPrefs{
			Enabled:        true,
			GroupMessages:  true,
			Achievements:   true,
			WeeklyCheckins: true,
		},
		QuietHours: QuietHours{Enabled: true, Start: "22:00", End: "07:00"},
		MaxPerDay:  8,
	}
}

// CategoryEnabled reports whether the toggle for the given category is
// on. The reminder category has no toggle of its own and is always
// enabled at this level.
func (p Preferences) CategoryEnabled(category Category) bool {
	switch category {
	case CategoryDevotion:
		return p.Devotions.Enabled
	case CategoryEvent:
		return p.Events.Enabled
	case CategoryPrayer:
		return p.Prayers.Enabled
	case CategoryCommunity:
		return p.Community.Enabled
	case CategoryReminder:
		return true
	}
	return false
}

// CategoryLanguage returns the language configured for the given
// category, or "" when none is set.
func (p Preferences) CategoryLanguage(category Category) string {
	switch category {
	case CategoryDevotion:
		return p.Devotions.Language
	case CategoryEvent, CategoryReminder:
		return p.Events.Language
	case CategoryPrayer:
		return p.Prayers.Language
	case CategoryCommunity:
		return p.Community.Language
	}
	return ""
}
