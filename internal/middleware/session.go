// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
)

// LoadSession loads the operator's session (creating one on first visit)
// and stores it in the request context, where handlers reach it through
// session.FromContext. Changes are saved just before the response is
// written, so a redirect never overtakes its own flash message.
//
// A backend failure is logged and the request continues with a detached
// session; view state is a convenience, not a reason to fail a page.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r.Context(), w, r)
			if err != nil {
				slog.Error("session load failed", "error", err, "request_id", requestid.From(r.Context()))
				sess = session.FromContext(r.Context())
			}

			ctx := r.Context()
			sw := &savingWriter{ResponseWriter: w, save: func() {
				if err := store.Save(ctx, sess); err != nil {
					slog.Error("session save failed", "error", err, "request_id", requestid.From(ctx))
				}
			}}

			next.ServeHTTP(sw, r.WithContext(session.NewContext(ctx, sess)))
			sw.flush()
		})
	}
}

// savingWriter runs save once, before the first byte of the response.
type savingWriter struct {
	http.ResponseWriter
	once sync.Once
	save func()
}

func (sw *savingWriter) flush() {
	sw.once.Do(sw.save)
}

func (sw *savingWriter) WriteHeader(code int) {
	sw.flush()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *savingWriter) Write(b []byte) (int, error) {
	sw.flush()
	return sw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *savingWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
