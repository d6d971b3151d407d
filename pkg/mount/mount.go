// Package mount watches the mount table for removable volumes.
package mount

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/metrics"
)

// Event types.
const (
	EventAdded   = "added"
	EventRemoved = "removed"
)

// Event reports a mount point appearing or disappearing.
type Event struct {
	Type   string
	Path   string
	Device string
	Time   time.Time
}

// Mount is one line of the mount table.
type Mount struct {
	Device string
	Path   string
	FSType string
}

// Monitor polls a mount table file and reports changes below its roots.
type Monitor struct {
	table    string
	roots    []string
	interval time.Duration

	mu       sync.RWMutex
	state    map[string]Mount
	subs     map[chan Event]struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a monitor for table, reporting mount points strictly below roots.
func New(table string, roots []string, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = 2 * time.Second
	}
	clean := make([]string, 0, len(roots))
	for _, r := range roots {
		clean = append(clean, filepath.Clean(r))
	}
	return &Monitor{
		table:    table,
		roots:    clean,
		interval: interval,
		state:    make(map[string]Mount),
		subs:     make(map[chan Event]struct{}),
		done:     make(chan struct{}),
	}
}

// Start reads the current table and begins polling. Volumes already mounted
// are not reported as events; see Current. Subscribe before Start to see
// every change after that snapshot.
func (m *Monitor) Start(ctx context.Context) error {
	mounts, err := m.read()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.state = mounts
	m.mu.Unlock()

	go m.pollLoop(ctx)
	return nil
}

// Stop ends polling. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Subscribe returns a channel that receives events.
func (m *Monitor) Subscribe() chan Event {
	ch := make(chan Event, 16)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (m *Monitor) Unsubscribe(ch chan Event) {
	m.mu.Lock()
	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
	m.mu.Unlock()
}

// Current returns the known mounts below the roots, sorted by path.
func (m *Monitor) Current() []Mount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Mount, 0, len(m.state))
	for _, mt := range m.state {
		out = append(out, mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (m *Monitor) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Poll()
		case <-m.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Poll re-reads the table once and broadcasts the differences.
func (m *Monitor) Poll() {
	mounts, err := m.read()
	if err != nil {
		logging.Warn("mount: cannot read mount table", zap.String("table", m.table), zap.Error(err))
		return
	}

	now := time.Now()
	var events []Event

	m.mu.Lock()
	for path, mt := range mounts {
		if _, ok := m.state[path]; !ok {
			events = append(events, Event{Type: EventAdded, Path: path, Device: mt.Device, Time: now})
		}
	}
	for path, mt := range m.state {
		if _, ok := mounts[path]; !ok {
			events = append(events, Event{Type: EventRemoved, Path: path, Device: mt.Device, Time: now})
		}
	}
	m.state = mounts
	m.mu.Unlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].Type != events[j].Type {
			return events[i].Type == EventRemoved
		}
		return events[i].Path < events[j].Path
	})
	if len(events) > 0 {
		m.broadcast(events)
	}
}

func (m *Monitor) broadcast(events []Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, event := range events {
		metrics.RecordMountEvent(event.Type)
		logging.Info("mount: "+event.Type,
			zap.String("path", event.Path),
			zap.String("device", event.Device))
		for ch := range m.subs {
			select {
			case ch <- event:
			default:
				logging.Warn("mount: dropping event for slow subscriber", zap.String("path", event.Path))
			}
		}
	}
}

func (m *Monitor) read() (map[string]Mount, error) {
	f, err := os.Open(m.table)
	if err != nil {
		return nil, fmt.Errorf("open mount table: %w", err)
	}
	defer f.Close()

	all, err := ParseTable(f)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Mount)
	for _, mt := range all {
		if m.underRoots(mt.Path) {
			out[mt.Path] = mt
		}
	}
	return out, nil
}

func (m *Monitor) underRoots(path string) bool {
	for _, root := range m.roots {
		if root == "/" {
			if path != "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}

// ParseTable reads fstab-format lines: device, mount point, type, options.
func ParseTable(r io.Reader) ([]Mount, error) {
	var out []Mount
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		out = append(out, Mount{
			Device: unescape(fields[0]),
			Path:   unescape(fields[1]),
			FSType: fields[2],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	return out, nil
}

// unescape decodes the octal escapes the kernel uses for blanks and backslashes.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
