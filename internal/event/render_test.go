package event

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "device-relay-bot/internal/errors"
)

func testRenderer() *Renderer {
	return NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mediaEvent(t *testing.T, eventType Type, items []string) *Event {
	t.Helper()

	data, err := json.Marshal(items)
	require.NoError(t, err)

	return &Event{
		Type:        eventType,
		Fingerprint: "dev-1",
		CollectedAt: "2026-08-29T10:00:00Z",
		Data:        data,
	}
}

func TestRenderPhotosCaptionOnFirstItemOnly(t *testing.T) {
	items := []string{
		base64.StdEncoding.EncodeToString([]byte("first")),
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("second")),
		base64.StdEncoding.EncodeToString([]byte("third")),
	}

	msgs, err := testRenderer().Render(mediaEvent(t, TypePhotos, items))
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	require.Equal(t, KindPhoto, msgs[0].Kind)
	require.Contains(t, msgs[0].Text, "dev-1")
	require.Contains(t, msgs[0].Text, "2026-08-29T10:00:00Z")
	require.True(t, msgs[0].Markdown)
	require.Equal(t, []byte("first"), msgs[0].Body)

	require.Equal(t, []byte("second"), msgs[1].Body, "data-URI prefix must be stripped")

	for _, msg := range msgs[1:] {
		require.Empty(t, msg.Text, "only the first item carries the caption")
	}
}

func TestRenderPhotosSkipsUndecodableItems(t *testing.T) {
	items := []string{
		"%%% not base64 %%%",
		base64.StdEncoding.EncodeToString([]byte("good")),
	}

	msgs, err := testRenderer().Render(mediaEvent(t, TypePhotos, items))
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// The first decodable item carries the caption even when earlier
	// items were dropped.
	require.Equal(t, []byte("good"), msgs[0].Body)
	require.NotEmpty(t, msgs[0].Text)
}

func TestRenderPhotosCapsAtTenItems(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("x"))
	items := make([]string, 15)
	for i := range items {
		items[i] = encoded
	}

	msgs, err := testRenderer().Render(mediaEvent(t, TypePhotos, items))
	require.NoError(t, err)
	require.Len(t, msgs, 10)
}

func TestRenderVideoUsesVideoKind(t *testing.T) {
	items := []string{base64.StdEncoding.EncodeToString([]byte("clip"))}

	msgs, err := testRenderer().Render(mediaEvent(t, TypeVideo, items))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, KindVideo, msgs[0].Kind)
}

func TestRenderLocation(t *testing.T) {
	ev := &Event{
		Type:        TypeLocation,
		Fingerprint: "dev-1",
		Data:        json.RawMessage(`{"latitude":10.0,"longitude":20.0}`),
	}

	msgs, err := testRenderer().Render(ev)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.Equal(t, KindText, msgs[0].Kind)
	require.True(t, msgs[0].Markdown)
	require.True(t, msgs[0].NoPreview)
	require.Contains(t, msgs[0].Text, "https://www.google.com/maps?q=10.0,20.0")
}

func TestRenderLocationMissingCoordinate(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "missing longitude", data: `{"latitude":10.0}`},
		{name: "missing latitude", data: `{"longitude":20.0}`},
		{name: "empty object", data: `{}`},
		{name: "not an object", data: `"10,20"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev := &Event{Type: TypeLocation, Data: json.RawMessage(tc.data)}

			msgs, err := testRenderer().Render(ev)
			require.Error(t, err)
			require.Nil(t, msgs)
			require.Equal(t, "E110", apperrors.CodeOf(err))
		})
	}
}

func TestRenderFormFiltersBlankValues(t *testing.T) {
	ev := &Event{
		Type:        TypeForm,
		Fingerprint: "dev-1",
		FormID:      "signup",
		Data:        json.RawMessage(`{"email":"a@b.c","name":"   ","age":30,"note":""}`),
	}

	msgs, err := testRenderer().Render(ev)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.Contains(t, msgs[0].Text, "signup")
	require.Contains(t, msgs[0].Text, "email")
	require.Contains(t, msgs[0].Text, "a@b.c")
	require.Contains(t, msgs[0].Text, "30")
	require.NotContains(t, msgs[0].Text, "name")
	require.NotContains(t, msgs[0].Text, "note")
}

func TestRenderFormAllBlankUsesPlaceholder(t *testing.T) {
	ev := &Event{
		Type: TypeForm,
		Data: json.RawMessage(`{"a":"","b":"  "}`),
	}

	msgs, err := testRenderer().Render(ev)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0].Text, "_(empty)_")
}

func TestRenderDeviceInfoKeepsBlankValues(t *testing.T) {
	ev := &Event{
		Type: TypeDeviceInfo,
		Data: json.RawMessage(`{"model":"Pixel 9","carrier":""}`),
	}

	msgs, err := testRenderer().Render(ev)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0].Text, "model")
	require.Contains(t, msgs[0].Text, "carrier", "device_info must not filter blanks")
}

func TestRenderUnknownTypeProducesNothing(t *testing.T) {
	ev := &Event{Type: "telepathy", Data: json.RawMessage(`{}`)}

	msgs, err := testRenderer().Render(ev)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestRenderIsDeterministic(t *testing.T) {
	ev := &Event{
		Type:        TypeForm,
		Fingerprint: "dev-1",
		FormID:      "f",
		Data:        json.RawMessage(`{"z":"1","a":"2","m":"3"}`),
	}

	r := testRenderer()
	first, err := r.Render(ev)
	require.NoError(t, err)
	second, err := r.Render(ev)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestFormatCoord(t *testing.T) {
	require.Equal(t, "10.0", formatCoord(10))
	require.Equal(t, "10.5", formatCoord(10.5))
	require.Equal(t, "-3.25", formatCoord(-3.25))
	require.Equal(t, "0.0", formatCoord(0))
}
