// Package audit writes the bot's message trail: one append-only JSON line per
// inbound or outbound message. A reply does not count as sent until its entry
// is durably appended; every error path still produces an entry.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Direction of a message relative to the bot.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Action classifies what the message was about.
const (
	ActionSearch = "patient_search"
	ActionSelect = "patient_select"
	ActionError  = "error"
	ActionHelp   = "help"
)

// retentionDays is how long rotated audit files are kept before the file
// layer purges them. Removal is the file layer's job, never the bot's.
const retentionDays = 60

// maxMessageLen bounds the raw text recorded per entry.
const maxMessageLen = 500

// Entry is one audit record. UserID and MatrixUser stay null for messages
// from accounts whose identity binding is missing.
type Entry struct {
	Timestamp         time.Time  `json:"timestamp"`
	Direction         string     `json:"direction"`
	UserID            *uuid.UUID `json:"user_id"`
	MatrixUser        *string    `json:"matrix_user"`
	RoomID            string     `json:"room_id"`
	Action            string     `json:"action"`
	Message           string     `json:"message"`
	ResultsCount      *int       `json:"results_count,omitempty"`
	SelectedPatientID *uuid.UUID `json:"selected_patient_id,omitempty"`
}

// Recorder is what the orchestrator depends on; tests substitute their own.
type Recorder interface {
	Record(entry Entry) error
}

// Logger appends entries to a daily-rotated file. Rotation happens at write
// time when the UTC day changes; the underlying lumberjack writer prunes
// rotated files older than the retention window.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	rotator *lumberjack.Logger
	log     zerolog.Logger
	now     func() time.Time
	curDay  string
}

func NewLogger(dir string, log zerolog.Logger) *Logger {
	rotator := &lumberjack.Logger{
		Filename: filepath.Join(dir, "bot-audit.log"),
		MaxAge:   retentionDays,
		Compress: false,
	}
	return &Logger{
		out:     rotator,
		rotator: rotator,
		log:     log,
		now:     time.Now,
	}
}

// Record appends one entry synchronously. The caller must treat a non-nil
// error as "this message was not audited" and fail the pipeline step.
func (l *Logger) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	if entry.Direction != DirectionInbound && entry.Direction != DirectionOutbound {
		return fmt.Errorf("audit: invalid direction %q", entry.Direction)
	}
	if len(entry.Message) > maxMessageLen {
		entry.Message = entry.Message[:maxMessageLen]
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	day := entry.Timestamp.Format("2006-01-02")
	if l.curDay == "" {
		l.curDay = day
	} else if day != l.curDay {
		if l.rotator != nil {
			if err := l.rotator.Rotate(); err != nil {
				return fmt.Errorf("audit: rotate: %w", err)
			}
		}
		l.curDay = day
	}

	if _, err := l.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}

	// mirror to the structured log so operators can tail the trail live
	l.log.Info().
		Str("type", "bot_audit").
		Str("direction", entry.Direction).
		Str("room_id", entry.RoomID).
		Str("action", entry.Action).
		Msg("audit")

	return nil
}

// Close flushes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}
