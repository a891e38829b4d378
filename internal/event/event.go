// Package event defines the inbound device event union and renders events
// into outbound Telegram message descriptors.
package event

import "encoding/json"

// Type discriminates the event payload shape.
type Type string

const (
	TypePhotos     Type = "photos"
	TypeVideo      Type = "video"
	TypeLocation   Type = "location"
	TypeForm       Type = "form"
	TypeDeviceInfo Type = "device_info"
)

// Event is one device-originated event as carried in the webhook body.
// Data is decoded per Type at render time; the event itself is never
// persisted.
type Event struct {
	Type        Type            `json:"type"`
	Fingerprint string          `json:"fingerprint"`
	CollectedAt string          `json:"collectedAt"`
	FormID      string          `json:"formId,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// locationData is the payload shape for TypeLocation. Pointers distinguish
// a missing coordinate from a zero one.
type locationData struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Kind discriminates outbound message descriptors.
type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Message is one outbound message descriptor consumed by the delivery
// engine. For media kinds Body holds the decoded bytes and Text the
// caption; for text kind Text holds the full message.
type Message struct {
	Kind      Kind
	Body      []byte
	Text      string
	Markdown  bool
	NoPreview bool
}
