package domain

import "errors"

// ErrSessionNotFound no learning session registered under the given id
var ErrSessionNotFound = errors.New("Learning session not found")

// ErrSessionForbidden session belongs to another user
var ErrSessionForbidden = errors.New("Learning session belongs to another user")

// ErrNoActiveLecture operation requires a selected lecture
var ErrNoActiveLecture = errors.New("No lecture is selected")

// ErrLectureNotFound lecture is not part of the given section
var ErrLectureNotFound = errors.New("Lecture not found in section")

// ErrNoPendingPrompt resume prompt was already answered, expired or never shown
var ErrNoPendingPrompt = errors.New("No pending resume prompt")

// ErrMalformedPayload collaborator response is not shaped as expected
var ErrMalformedPayload = errors.New("Malformed collaborator payload")

// ErrNoNotification there is no notice to show or hide
var ErrNoNotification = errors.New("No notification")

// ErrStaleLecture playback signal names a lecture that is no longer selected
var ErrStaleLecture = errors.New("Lecture is no longer selected")
