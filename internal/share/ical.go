// Package share renders events in formats meant to leave the service:
// iCalendar files for calendar clients and QR codes for event links.
package share

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/eventhub-rsvp/app/internal/models"
)

const productID = "-//eventhub-rsvp//EN"

// EventURL is the public link of an event under baseURL.
func EventURL(baseURL, eventID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/events/" + eventID
}

// ICal converts events into a calendar with one VEVENT each.
func ICal(baseURL string, stamp time.Time, events ...*models.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	for _, e := range events {
		cal.Children = append(cal.Children, toVEvent(baseURL, stamp, e))
	}
	return cal
}

// WriteICal encodes events as an iCalendar stream.
func WriteICal(w io.Writer, baseURL string, stamp time.Time, events ...*models.Event) error {
	if err := ical.NewEncoder(w).Encode(ICal(baseURL, stamp, events...)); err != nil {
		return fmt.Errorf("failed to encode events to iCal format: %w", err)
	}
	return nil
}

func toVEvent(baseURL string, stamp time.Time, e *models.Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.ID)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, e.Date.UTC())
	ve.Props.SetText(ical.PropSummary, e.Title)

	if e.Description != "" {
		ve.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		ve.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.Category != "" {
		ve.Props.SetText(ical.PropCategories, string(e.Category))
	}
	if baseURL != "" {
		link := ical.NewProp(ical.PropURL)
		link.Value = EventURL(baseURL, e.ID)
		ve.Props.Set(link)
	}

	status := "CONFIRMED"
	switch e.Status {
	case models.EventStatusDraft:
		status = "TENTATIVE"
	case models.EventStatusCancelled:
		status = "CANCELLED"
	}
	ve.Props.SetText(ical.PropStatus, status)
	return ve
}
