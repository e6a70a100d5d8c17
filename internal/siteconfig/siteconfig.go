package siteconfig

import (
	"fmt"
	"time"
)

// Defaults applied when the navbar banner was saved without styling.
const (
	DefaultBgColor   = "#047857"
	DefaultTextColor = "#ffffff"
)

// Banner is one home-page banner slide.
type Banner struct {
	Image string `json:"image" firestore:"image"`
	Link  string `json:"link,omitempty" firestore:"link"`
}

// NavbarBanner is the announcement strip above the navbar, optionally with
// a countdown. TimeLeft is the number of seconds left at save time; the
// live remainder is derived from SavedAt.
type NavbarBanner struct {
	Text      string    `json:"bannerText" firestore:"bannerText"`
	BgColor   string    `json:"bgColor" firestore:"bgColor"`
	TextColor string    `json:"textColor" firestore:"textColor"`
	Visible   bool      `json:"isVisible" firestore:"isVisible"`
	UseTimer  bool      `json:"useTimer" firestore:"useTimer"`
	TimeLeft  int       `json:"timeLeft" firestore:"timeLeft"`
	SavedAt   time.Time `json:"savedAt" firestore:"savedAt"`
}

// Remaining returns the countdown seconds left at now, never negative.
// Banners without a timer always report zero.
func (b NavbarBanner) Remaining(now time.Time) int {
	if !b.UseTimer || b.TimeLeft <= 0 {
		return 0
	}
	elapsed := int(now.Sub(b.SavedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	left := b.TimeLeft - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// FormatCountdown renders seconds as mm:ss, as the navbar shows it.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Site is the single site-wide configuration document.
type Site struct {
	Banners      []Banner     `json:"banners" firestore:"banners"`
	NavbarBanner NavbarBanner `json:"bannerConfig" firestore:"bannerConfig"`
}
