// Package replay records delivery episodes as zstd-compressed JSON lines
// and re-checks recordings against a fresh simulation. Because the
// environment is fully deterministic given its seed, a recorded episode can
// be replayed from its header and compared tick by tick.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/sim"
)

// FormatVersion identifies the replay file layout.
const FormatVersion = 1

// Header is the first line of a replay file. It carries everything needed
// to re-run the episode: the map, the environment parameters, and the state
// right after reset.
type Header struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	MapName   string           `json:"map_name"`
	Grid      string           `json:"grid"`
	Agent     string           `json:"agent"`
	AgentSeed int64            `json:"agent_seed"`
	Config    sim.Config       `json:"config"`
	Start     sim.StateDump    `json:"start"`
	Revealed  []core.PackageID `json:"revealed,omitempty"`
}

// TickRecord is one simulated step. Actions use the compact two-character
// encoding from core.Action. Revealed lists the packages announced to the
// agent after this step; their coordinates live in the state dump.
type TickRecord struct {
	Tick     int              `json:"tick"`
	Actions  []string         `json:"actions"`
	Reward   float64          `json:"reward"`
	Done     bool             `json:"done"`
	State    sim.StateDump    `json:"state"`
	Revealed []core.PackageID `json:"revealed,omitempty"`
}

// Episode is a fully decoded replay file.
type Episode struct {
	Header Header
	Ticks  []TickRecord
}

// NewHeader builds the header for an environment that was just Reset.
// reset is the snapshot Reset returned.
func NewHeader(mapName, agentName string, agentSeed int64, env *sim.Environment, reset core.Snapshot) Header {
	return Header{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		MapName:   mapName,
		Grid:      env.Grid().Text(),
		Agent:     agentName,
		AgentSeed: agentSeed,
		Config:    env.Config(),
		Start:     env.Dump(),
		Revealed:  viewIDs(reset.Packages),
	}
}

// Record builds the tick record for the step that produced res.
func Record(env *sim.Environment, actions []core.Action, res sim.StepResult) TickRecord {
	return TickRecord{
		Tick:     env.Tick(),
		Actions:  encodeActions(actions),
		Reward:   res.Reward,
		Done:     res.Done,
		State:    env.Dump(),
		Revealed: viewIDs(res.Snapshot.Packages),
	}
}

// Writer streams a replay file to disk as the episode runs.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens path for writing and writes the header line. Parent
// directories are created as needed.
func Create(path string, h Header) (*Writer, error) {
	if h.Version == 0 {
		h.Version = FormatVersion
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	if err := w.writeLine(h); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// WriteTick appends one tick record.
func (w *Writer) WriteTick(rec TickRecord) error {
	return w.writeLine(rec)
}

func (w *Writer) writeLine(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("replay writer is closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes buffered data and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var err error
	if w.w != nil {
		err = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	return err
}

// ReadFile decodes a whole replay file.
func ReadFile(path string) (*Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	base := filepath.Base(path)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", base, err)
		}
		return nil, fmt.Errorf("%s: missing header line", base)
	}
	var ep Episode
	if err := json.Unmarshal(sc.Bytes(), &ep.Header); err != nil {
		return nil, fmt.Errorf("%s: header: %w", base, err)
	}
	if ep.Header.Version != FormatVersion {
		return nil, fmt.Errorf("%s: unsupported replay version %d", base, ep.Header.Version)
	}
	for sc.Scan() {
		var rec TickRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", base, len(ep.Ticks)+1, err)
		}
		ep.Ticks = append(ep.Ticks, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	return &ep, nil
}

// Verify re-simulates ep from its header, re-applies the recorded actions,
// and compares reward, termination, reveals, and the full state dump at
// every tick. It returns the number of ticks checked.
func Verify(ep *Episode) (int, error) {
	g, err := core.ParseMap(strings.NewReader(ep.Header.Grid))
	if err != nil {
		return 0, fmt.Errorf("replay grid: %w", err)
	}
	env, err := sim.New(g, ep.Header.Config)
	if err != nil {
		return 0, err
	}
	snap, err := env.Reset()
	if err != nil {
		return 0, err
	}
	if !reflect.DeepEqual(env.Dump(), ep.Header.Start) {
		return 0, fmt.Errorf("initial state does not match recording")
	}
	if !equalIDs(viewIDs(snap.Packages), ep.Header.Revealed) {
		return 0, fmt.Errorf("initial reveal does not match recording")
	}
	for i, rec := range ep.Ticks {
		if rec.Tick != env.Tick()+1 {
			return i, fmt.Errorf("record %d: tick %d out of order, want %d", i+1, rec.Tick, env.Tick()+1)
		}
		actions, err := decodeActions(rec.Actions)
		if err != nil {
			return i, fmt.Errorf("tick %d: %w", rec.Tick, err)
		}
		res, err := env.Step(actions)
		if err != nil {
			return i, fmt.Errorf("tick %d: %w", rec.Tick, err)
		}
		if res.Reward != rec.Reward {
			return i, fmt.Errorf("tick %d: reward %v, recording says %v", rec.Tick, res.Reward, rec.Reward)
		}
		if res.Done != rec.Done {
			return i, fmt.Errorf("tick %d: done %v, recording says %v", rec.Tick, res.Done, rec.Done)
		}
		if !equalIDs(viewIDs(res.Snapshot.Packages), rec.Revealed) {
			return i, fmt.Errorf("tick %d: revealed packages do not match recording", rec.Tick)
		}
		if !reflect.DeepEqual(env.Dump(), rec.State) {
			return i, fmt.Errorf("tick %d: state does not match recording", rec.Tick)
		}
	}
	return len(ep.Ticks), nil
}

func encodeActions(actions []core.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.String()
	}
	return out
}

func decodeActions(strs []string) ([]core.Action, error) {
	out := make([]core.Action, len(strs))
	for i, s := range strs {
		a, err := core.ParseAction(s)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out[i] = a
	}
	return out, nil
}

func viewIDs(views []core.PackageView) []core.PackageID {
	if len(views) == 0 {
		return nil
	}
	ids := make([]core.PackageID, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func equalIDs(a, b []core.PackageID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
