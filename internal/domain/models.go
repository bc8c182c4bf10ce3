// Package domain defines the core domain models for the geopicture client.
package domain

import (
	"fmt"
	"strconv"
)

// User is the backend account associated with a session. The anonymous
// user has UID 0.
type User struct {
	UID  int    `json:"uid"`
	Name string `json:"name"`
}

// Anonymous reports whether the user is the backend's anonymous account.
func (u User) Anonymous() bool {
	return u.UID == 0
}

// Session is the backend session obtained from connect or login. It lives
// for the process lifetime only and is never persisted.
type Session struct {
	SessionID   string `json:"sessid"`
	SessionName string `json:"session_name"`
	User        User   `json:"user"`
}

// Authenticated reports whether the session belongs to a non-anonymous user.
func (s Session) Authenticated() bool {
	return !s.User.Anonymous()
}

// LocationDraft holds the best-known device location and its address
// fields. Every field is independently editable by the user.
type LocationDraft struct {
	Latitude   float64
	Longitude  float64
	HasFix     bool
	Street     string
	City       string
	Province   string
	PostalCode string
}

// Summary returns the derived display string for the draft. It is
// recomputed from the current field values on every call and never cached.
func (d LocationDraft) Summary() string {
	return fmt.Sprintf("%s, %s %s", d.Street, d.PostalCode, d.City)
}

// LatitudeString returns the latitude as a form-field string, empty when
// no fix has been acquired.
func (d LocationDraft) LatitudeString() string {
	if !d.HasFix {
		return ""
	}
	return strconv.FormatFloat(d.Latitude, 'f', -1, 64)
}

// LongitudeString returns the longitude as a form-field string, empty when
// no fix has been acquired.
func (d LocationDraft) LongitudeString() string {
	if !d.HasFix {
		return ""
	}
	return strconv.FormatFloat(d.Longitude, 'f', -1, 64)
}

// PostDraft is the transient assembly of one submission attempt. It is
// built by the coordinator immediately before the upload call and
// discarded afterwards.
type PostDraft struct {
	Title    string
	Body     string
	Filename string
	Payload  string // base64 image content, without the data URL prefix
	Location LocationDraft
}

// SubmissionState represents the state of the submission coordinator.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "IDLE"
	SubmissionGated      SubmissionState = "GATED"
	SubmissionValidating SubmissionState = "VALIDATING"
	SubmissionUploading  SubmissionState = "UPLOADING"
	SubmissionCreating   SubmissionState = "CREATING"
	SubmissionDone       SubmissionState = "DONE"
	SubmissionFailed     SubmissionState = "FAILED"
)
