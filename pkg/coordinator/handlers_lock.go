package coordinator

import (
	"context"
	"strconv"
	"strings"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleWriteLock implements spec.md §4.3's WRITE_LOCK: existence and
// write-permission check, then lock-table acquisition (itself already
// idempotent per-session), then endpoint resolution. The sentence index
// rides in req.Payload as a decimal ASCII integer.
func handleWriteLock(ctx context.Context, s *Server, session string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sentence, err := strconv.Atoi(strings.TrimSpace(string(req.Payload)))
	if err != nil {
		return wire.FromError(req.Type, protoerr.BadParam("malformed sentence index: "+string(req.Payload)))
	}

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.authorize(ctx, entry, req.Username, catalog.PermWrite); err != nil {
		return wire.FromError(req.Type, err)
	}

	if err := s.locks.Acquire(req.FileName, sentence, req.Username, session); err != nil {
		return wire.FromError(req.Type, err)
	}
	s.metrics.LocksHeld.Set(float64(s.locks.Count()))

	primaryEp, replicaEp, err := s.placementEndpoints(entry)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	payload := wire.RedirectPayload{Primary: *primaryEp, Replica: replicaEp, Sentence: &sentence}
	return wire.Ok(req.Type, payload.Encode())
}

// handleWriteCommit implements WRITE_COMMIT/ETIRW (spec.md §4.3): release
// the matching lock (silent no-op if not held by this exact tuple) and
// bump modified_at. req.Payload is "<sentence_index>" or
// "<sentence_index>|<words>,<chars>,<sentences>" — the client reports
// counters it received back from the storage node's WRITE response,
// since the coordinator never sees file content itself. A commit with
// no counters leaves the cached counts as they were (advisory per
// spec.md §3).
func handleWriteCommit(ctx context.Context, s *Server, session string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sentencePart, countersPart, _ := strings.Cut(strings.TrimSpace(string(req.Payload)), "|")
	sentence, err := strconv.Atoi(sentencePart)
	if err != nil {
		return wire.FromError(req.Type, protoerr.BadParam("malformed sentence index: "+sentencePart))
	}

	s.locks.Release(req.FileName, sentence, req.Username, session)
	s.metrics.LocksHeld.Set(float64(s.locks.Count()))

	counters, err := parseCounters(countersPart)
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	if err := s.store.TouchModified(ctx, req.FileName, counters); err != nil {
		return wire.FromError(req.Type, err)
	}
	return wire.Ok(req.Type, nil)
}

// parseCounters parses the optional "words,chars,sentences" suffix of a
// WRITE_COMMIT payload. An empty string means the client reported no
// counters, which is not an error.
func parseCounters(s string) (*catalog.Counters, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, protoerr.BadParam("malformed counters: " + s)
	}
	words, err1 := strconv.Atoi(parts[0])
	chars, err2 := strconv.Atoi(parts[1])
	sentences, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, protoerr.BadParam("malformed counters: " + s)
	}
	return &catalog.Counters{Words: words, Chars: chars, Sentences: sentences}, nil
}
