package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eventhub-rsvp/app/internal/share"
)

// EventICal serves an event as an iCalendar file.
func EventICal(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := env.Events.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := share.WriteICal(&buf, env.PublicURL, env.Clock.Now(), e); err != nil {
			env.WriteError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+e.ID+".ics"))
		w.Write(buf.Bytes())
	}
}

// EventQR serves a PNG QR code linking to the event. ?size= sets the
// edge length in pixels.
func EventQR(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := env.Events.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		png, err := share.QRCode(share.EventURL(env.PublicURL, e.ID), size)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
