package model

// PreferencesUpdate is a partial preferences change. Nil fields are left
// untouched, so updating one field of a category never erases its
// siblings.
type PreferencesUpdate struct {
	Enabled            *bool                  `json:"enabled,omitempty"`
	Devotions          *DevotionPrefsUpdate   `json:"devotions,omitempty"`
	Events             *EventPrefsUpdate      `json:"events,omitempty"`
	Prayers            *PrayerPrefsUpdate     `json:"prayers,omitempty"`
	Community          *CommunityPrefsUpdate  `json:"community,omitempty"`
	QuietHours         *QuietHoursUpdate      `json:"quiet_hours,omitempty"`
	BatchNotifications *bool                  `json:"batch_notifications,omitempty"`
	MaxPerDay          *int                   `json:"max_per_day,omitempty"`
}

type DevotionPrefsUpdate struct {
	Enabled  *bool   `json:"enabled,omitempty"`
	Time     *string `json:"time,omitempty"`
	Language *string `json:"language,omitempty"`
}

type EventPrefsUpdate struct {
	Enabled   *bool     `json:"enabled,omitempty"`
	Reminders *[]string `json:"reminders,omitempty"`
	Language  *string   `json:"language,omitempty"`
}

type PrayerPrefsUpdate struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	UrgentOnly *bool   `json:"urgent_only,omitempty"`
	Language   *string `json:"language,omitempty"`
}

type CommunityPrefsUpdate struct {
	Enabled        *bool   `json:"enabled,omitempty"`
	GroupMessages  *bool   `json:"group_messages,omitempty"`
	Achievements   *bool   `json:"achievements,omitempty"`
	WeeklyCheckins *bool   `json:"weekly_checkins,omitempty"`
	Language       *string `json:"language,omitempty"`
}

type QuietHoursUpdate struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
}

// Apply merges the update into p and returns the result. p itself is
// not modified.
func (u PreferencesUpdate) Apply(p Preferences) Preferences {
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	if u.BatchNotifications != nil {
		p.BatchNotifications = *u.BatchNotifications
	}
	if u.MaxPerDay != nil {
		p.MaxPerDay = *u.MaxPerDay
	}
	if d := u.Devotions; d != nil {
		if d.Enabled != nil {
			p.Devotions.Enabled = *d.Enabled
		}
		if d.Time != nil {
			p.Devotions.Time = *d.Time
		}
		if d.Language != nil {
			p.Devotions.Language = *d.Language
		}
	}
	if e := u.Events; e != nil {
		if e.Enabled != nil {
			p.Events.Enabled = *e.Enabled
		}
		if e.Reminders != nil {
			p.Events.Reminders = append([]string(nil), (*e.Reminders)...)
		}
		if e.Language != nil {
			p.Events.Language = *e.Language
		}
	}
	if pr := u.Prayers; pr != nil {
		if pr.Enabled != nil {
			p.Prayers.Enabled = *pr.Enabled
		}
		if pr.UrgentOnly != nil {
			p.Prayers.UrgentOnly = *pr.UrgentOnly
		}
		if pr.Language != nil {
			p.Prayers.Language = *pr.Language
		}
	}
	if c := u.Community; c != nil {
		if c.Enabled != nil {
			p.Community.Enabled = *c.Enabled
		}
		if c.GroupMessages != nil {
			p.Community.GroupMessages = *c.GroupMessages
		}
		if c.Achievements != nil {
			p.Community.Achievements = *c.Achievements
		}
		if c.WeeklyCheckins != nil {
			p.Community.WeeklyCheckins = *c.WeeklyCheckins
		}
		if c.Language != nil {
			p.Community.Language = *c.Language
		}
	}
	if q := u.QuietHours; q != nil {
		if q.Enabled != nil {
			p.QuietHours.Enabled = *q.Enabled
		}
		if q.Start != nil {
			p.QuietHours.Start = *q.Start
		}
		if q.End != nil {
			p.QuietHours.End = *q.End
		}
	}
	return p
}
