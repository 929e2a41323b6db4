// Package bot wires the message pipeline: receive, audit inbound, parse,
// route, permission-check, respond, audit outbound. Rooms are processed
// concurrently; messages within one room strictly in order.
package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/censo/censobot/internal/domain/identity"
	"github.com/censo/censobot/internal/domain/patient"
	"github.com/censo/censobot/internal/domain/search"
	"github.com/censo/censobot/internal/platform/audit"
	"github.com/censo/censobot/internal/platform/auth"
	"github.com/censo/censobot/internal/platform/session"
	"github.com/censo/censobot/internal/platform/transport"
)

// roomQueueSize bounds each room's backlog. A full queue drops the message;
// the user simply retries, the same as a message lost to a disconnect.
const roomQueueSize = 16

// Searcher is the ranked-search capability consumed by the orchestrator.
type Searcher interface {
	Search(ctx context.Context, userID uuid.UUID, q search.Query) ([]search.Candidate, error)
}

type Orchestrator struct {
	sender     transport.Sender
	auditor    audit.Recorder
	bindings   identity.BindingRepository
	searcher   Searcher
	gate       auth.PermissionGate
	admissions patient.AdmissionRepository
	store      *session.Store
	log        zerolog.Logger
	timeout    time.Duration
	now        func() time.Time

	ctx   context.Context
	mu    sync.Mutex
	rooms map[string]chan transport.Message
	wg    sync.WaitGroup
}

func NewOrchestrator(
	sender transport.Sender,
	auditor audit.Recorder,
	bindings identity.BindingRepository,
	searcher Searcher,
	gate auth.PermissionGate,
	admissions patient.AdmissionRepository,
	store *session.Store,
	timeout time.Duration,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		sender:     sender,
		auditor:    auditor,
		bindings:   bindings,
		searcher:   searcher,
		gate:       gate,
		admissions: admissions,
		store:      store,
		log:        log,
		timeout:    timeout,
		now:        time.Now,
		rooms:      make(map[string]chan transport.Message),
	}
}

// Start binds the orchestrator to its lifetime context. Room workers stop
// when it is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	o.ctx = ctx
}

// Wait blocks until all room workers have drained after cancellation.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// HandleMessage enqueues an inbound message onto its room's serial queue,
// creating the room worker on first contact. Never blocks the sync loop.
func (o *Orchestrator) HandleMessage(msg transport.Message) {
	o.mu.Lock()
	ch, ok := o.rooms[msg.RoomID]
	if !ok {
		ch = make(chan transport.Message, roomQueueSize)
		o.rooms[msg.RoomID] = ch
		o.wg.Add(1)
		go o.roomWorker(ch)
	}
	o.mu.Unlock()

	select {
	case ch <- msg:
	default:
		o.log.Warn().Str("room_id", msg.RoomID).Msg("room queue full, message dropped")
	}
}

// roomWorker serializes one room: a message is only taken once the previous
// reply/audit cycle has fully completed.
func (o *Orchestrator) roomWorker(ch <-chan transport.Message) {
	defer o.wg.Done()
	for {
		select {
		case msg := <-ch:
			o.process(msg)
		case <-o.ctx.Done():
			return
		}
	}
}

// reply is the outcome of routing one message: the text to send plus what the
// outbound audit entry should say about it.
type reply struct {
	text            string
	action          string
	resultsCount    *int
	selectedPatient *uuid.UUID
}

func (o *Orchestrator) process(msg transport.Message) {
	ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
	defer cancel()

	cmd := Parse(msg.Body)

	binding, err := o.bindings.GetByRoom(ctx, msg.RoomID)
	if err != nil {
		rep := reply{text: msgUnavailable, action: audit.ActionError}
		if errors.Is(err, identity.ErrNotBound) {
			rep.text = msgRedirect
		} else {
			o.log.Error().Err(err).Str("room_id", msg.RoomID).Msg("identity lookup failed")
		}
		if !o.recordInbound(msg, nil, audit.ActionError) {
			return
		}
		o.sendReply(ctx, msg, nil, rep)
		return
	}

	// the inbound entry lands before routing runs: a message that cannot be
	// audited is dropped before it touches any room state
	if !o.recordInbound(msg, &binding.UserID, classify(cmd)) {
		return
	}

	rep := o.route(ctx, binding.UserID, msg.RoomID, cmd)
	o.sendReply(ctx, msg, &binding.UserID, rep)
}

// recordInbound appends the inbound audit entry. A false return means the
// message must not be processed any further.
func (o *Orchestrator) recordInbound(msg transport.Message, userID *uuid.UUID, action string) bool {
	sender := msg.Sender
	in := audit.Entry{
		Direction:  audit.DirectionInbound,
		UserID:     userID,
		MatrixUser: &sender,
		RoomID:     msg.RoomID,
		Action:     action,
		Message:    msg.Body,
	}
	if err := o.auditor.Record(in); err != nil {
		o.log.Error().Err(err).Str("room_id", msg.RoomID).Msg("inbound audit failed, dropping message")
		return false
	}
	return true
}

// sendReply appends the outbound audit entry and then sends. A reply whose
// audit append failed is never sent.
func (o *Orchestrator) sendReply(ctx context.Context, msg transport.Message, userID *uuid.UUID, rep reply) {
	sender := msg.Sender
	out := audit.Entry{
		Direction:         audit.DirectionOutbound,
		UserID:            userID,
		MatrixUser:        &sender,
		RoomID:            msg.RoomID,
		Action:            rep.action,
		Message:           rep.text,
		ResultsCount:      rep.resultsCount,
		SelectedPatientID: rep.selectedPatient,
	}
	if err := o.auditor.Record(out); err != nil {
		o.log.Error().Err(err).Str("room_id", msg.RoomID).Msg("outbound audit failed, reply withheld")
		return
	}

	if err := o.sender.SendText(ctx, msg.RoomID, rep.text); err != nil {
		o.log.Error().Err(err).Str("room_id", msg.RoomID).Msg("send failed")
	}
}

func classify(cmd Command) string {
	switch cmd.(type) {
	case SearchCommand:
		return audit.ActionSearch
	case SelectionCommand:
		return audit.ActionSelect
	default:
		return audit.ActionHelp
	}
}

func (o *Orchestrator) route(ctx context.Context, userID uuid.UUID, roomID string, cmd Command) reply {
	switch c := cmd.(type) {
	case SearchCommand:
		return o.handleSearch(ctx, userID, roomID, c)
	case SelectionCommand:
		return o.handleSelection(ctx, userID, roomID, c)
	default:
		return reply{text: msgHelp, action: audit.ActionHelp}
	}
}

func (o *Orchestrator) handleSearch(ctx context.Context, userID uuid.UUID, roomID string, cmd SearchCommand) reply {
	// a new search always abandons whatever was pending, found or not
	o.store.Drop(roomID)

	candidates, err := o.searcher.Search(ctx, userID, cmd.Query)
	if err != nil {
		if errors.Is(err, search.ErrNotAuthorized) {
			return reply{text: msgSearchDenied, action: audit.ActionError}
		}
		o.log.Error().Err(err).Str("room_id", roomID).Msg("search failed")
		return reply{text: msgUnavailable, action: audit.ActionError}
	}

	n := len(candidates)
	if n == 0 {
		return reply{text: msgNoResults, action: audit.ActionSearch, resultsCount: &n}
	}

	o.store.Put(roomID, userID, candidates)
	return reply{text: renderResults(candidates), action: audit.ActionSearch, resultsCount: &n}
}

func (o *Orchestrator) handleSelection(ctx context.Context, userID uuid.UUID, roomID string, cmd SelectionCommand) reply {
	st := o.store.Consume(roomID)
	if st == nil {
		return reply{text: msgNoPending, action: audit.ActionSelect}
	}

	if cmd.Index > len(st.Candidates) {
		// an out-of-range attempt does not burn the pending state
		o.store.Restore(st)
		return reply{text: msgInvalidSelection(len(st.Candidates)), action: audit.ActionSelect}
	}

	candidate := st.Candidates[cmd.Index-1]
	patientID := candidate.Admission.PatientID

	allowed, err := o.gate.CanViewDetail(ctx, userID, patientID)
	if err != nil {
		o.store.Restore(st)
		o.log.Error().Err(err).Str("room_id", roomID).Msg("detail permission check failed")
		return reply{text: msgUnavailable, action: audit.ActionError}
	}
	if !allowed {
		// permission revoked between search and selection
		return reply{text: msgDetailDenied, action: audit.ActionError}
	}

	// re-fetch so the card reflects the admission as it is now, not as it
	// was when the search ran
	adm, err := o.admissions.GetByID(ctx, candidate.Admission.ID)
	if err != nil {
		o.store.Restore(st)
		o.log.Error().Err(err).Str("room_id", roomID).Msg("admission fetch failed")
		return reply{text: msgUnavailable, action: audit.ActionError}
	}

	return reply{
		text:            renderDetail(*adm, o.now()),
		action:          audit.ActionSelect,
		selectedPatient: &patientID,
	}
}
