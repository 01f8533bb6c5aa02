//go:build wasip1

package guest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plugyrt/plugy/wire"
)

// LogHandler routes slog records to the host through the well-known
// "_plugy_context_log" import, instead of to stdout (which a Wasm guest
// typically has no useful destination for). Install it with
// slog.SetDefault(slog.New(guest.NewLogHandler(...))) during plugin
// initialization.
type LogHandler struct {
	level slog.Level
}

// LogHandlerOption configures a LogHandler.
type LogHandlerOption func(*LogHandler)

// WithLevel sets the minimum level the handler reports; records below it
// are dropped before ever reaching the host.
func WithLevel(level slog.Level) LogHandlerOption {
	return func(h *LogHandler) { h.level = level }
}

// NewLogHandler creates a LogHandler with the given options.
func NewLogHandler(opts ...LogHandlerOption) *LogHandler {
	h := &LogHandler{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *LogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	cp := *h
	return &cp
}

func (h *LogHandler) WithGroup(_ string) slog.Handler {
	cp := *h
	return &cp
}

// logMessage is the wire shape of a log record crossing
// "_plugy_context_log".
type logMessage struct {
	Context ContextWire `json:"context"`
	Level   string      `json:"level"`
	Message string      `json:"message"`
	Attrs   []logAttr   `json:"attrs,omitempty"`
}

type logAttr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// hostLogMessage is the raw import a generated or hand-written glue layer
// declares; see guest.CallContext for why the import itself cannot be
// declared generically inside this package.
//
//go:wasmimport env _plugy_context_log
func hostLogMessage(packed uint64) uint64

func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	msg := logMessage{
		Context: ToWire(ctx),
		Level:   record.Level.String(),
		Message: record.Message,
	}
	record.Attrs(func(a slog.Attr) bool {
		msg.Attrs = append(msg.Attrs, logAttr{Key: a.Key, Value: a.Value.String()})
		return true
	})

	data, err := wire.Encode(msg)
	if err != nil {
		fmt.Printf("guest: failed to encode log record: %v\n", err)
		return nil
	}
	hostLogMessage(Put(data))
	return nil
}
