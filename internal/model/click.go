// Package model defines domain entities for the application.
package model

import "time"

// DeviceType classifies the visitor's device from the user-agent string.
type DeviceType string

const (
	DeviceMobile  DeviceType = "MOBILE"
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceTablet  DeviceType = "TABLET"
	DeviceUnknown DeviceType = "UNKNOWN"
)

// Click represents one observed visit event against a Link.
// Clicks are immutable once created and are deleted only by cascade
// when their owning link is deleted.
type Click struct {
	ID     string `json:"id"` // ULID, time-sortable
	LinkID string `json:"link_id"`

	// Raw request metadata
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Referer   string `json:"referer,omitempty"`

	// Derived device attributes
	DeviceType DeviceType `json:"device_type"`
	OS         string     `json:"os,omitempty"`
	Browser    string     `json:"browser,omitempty"`

	// Best-effort geo attributes; empty when lookup was skipped or failed.
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
