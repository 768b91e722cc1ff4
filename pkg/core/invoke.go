package core

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joeydtaylor/durable-starter/pkg/codec"
	"github.com/joeydtaylor/durable-starter/pkg/durable"
	hmetrics "github.com/joeydtaylor/durable-starter/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/durable-starter/pkg/transport/httpx"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

const HeaderIdempotency = "Idempotency-Key"

func invokeHandler(d BuildDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service, handler := httpx.Param(r, "service"), httpx.Param(r, "handler")
		b, h, err := d.Endpoint.Lookup(service, handler)
		if err != nil {
			writeError(w, err)
			return
		}

		buffer := bytebufferpool.Get()
		defer bytebufferpool.Put(buffer)
		if _, err := buffer.ReadFrom(r.Body); err != nil {
			writeError(w, fmt.Errorf("%w: %v", ErrBadEnvelope, err))
			return
		}

		var env requestEnvelope
		if err := codec.JSONStrict.Unmarshal(buffer.Bytes(), &env); err != nil {
			writeError(w, fmt.Errorf("%w: %v", ErrBadEnvelope, err))
			return
		}
		if b.Keyed && env.Key == "" {
			writeError(w, fmt.Errorf("%w: %s", ErrMissingKey, service))
			return
		}

		id, generated := invocationID(r)
		w.Header().Set(httpx.HeaderInvocationID, id)
		journalKey := durable.JournalKey(service, handler, env.Key, id)

		log := d.Logger.With(zap.String("requestId", chimd.GetReqID(r.Context())))
		inv := durable.NewInvocation(r.Context(), durable.Options{
			Service: service,
			Handler: handler,
			ID:      id,
			Key:     env.Key,
			Logger:  log,
			Journal: d.Store.Load(journalKey),
		})

		start := time.Now()
		out, err := h.Invoke(inv, env.Request)
		outcome := hmetrics.OutcomeOK
		if err != nil {
			outcome = hmetrics.OutcomeFailure
		}
		hmetrics.ObserveInvocation(service, handler, outcome, time.Since(start), inv.Recorded(), inv.Replayed())

		if err != nil {
			log.Error("invocation failed",
				zap.String("service", service),
				zap.String("handler", handler),
				zap.String("invocationId", id),
				zap.Error(err),
			)
			// Nobody can retry an ID they were never given.
			if generated {
				d.Store.Drop(journalKey)
			}
			writeError(w, err)
			return
		}
		d.Store.Drop(journalKey)

		payload, err := codec.JSON.Marshal(responseEnvelope{Response: out})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, payload, http.StatusOK)
	}
}

// invocationID reports whether the ID had to be generated.
func invocationID(r *http.Request) (string, bool) {
	for _, h := range []string{httpx.HeaderInvocationID, HeaderIdempotency} {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v, false
		}
	}
	return uuid.NewString(), true
}
