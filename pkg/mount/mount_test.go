package mount

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const baseTable = `sysfs /sys sysfs rw,nosuid 0 0
/dev/sda1 / ext4 rw,relatime 0 0
tmpfs /run tmpfs rw 0 0
`

func writeTable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write mount table: %v", err)
	}
}

func TestParseTableUnescapes(t *testing.T) {
	mounts, err := ParseTable(strings.NewReader(baseTable +
		"# comment\n\n/dev/sdb1 /media/kiosk/My\\040Photos vfat rw 0 0\nshort line\n"))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	if len(mounts) != 4 {
		t.Fatalf("Expected 4 mounts, got %d", len(mounts))
	}
	last := mounts[3]
	if last.Path != "/media/kiosk/My Photos" || last.Device != "/dev/sdb1" || last.FSType != "vfat" {
		t.Errorf("Unexpected mount %+v", last)
	}
}

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`plain`:         "plain",
		`a\040b`:        "a b",
		`tab\011x`:      "tab\tx",
		`back\134slash`: `back\slash`,
		`bad\9xx`:       `bad\9xx`,
		`trail\04`:      `trail\04`,
	}
	for in, want := range tests {
		if got := unescape(in); got != want {
			t.Errorf("unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPollReportsAddedAndRemoved(t *testing.T) {
	table := filepath.Join(t.TempDir(), "mounts")
	writeTable(t, table, baseTable)

	m := New(table, []string{"/media", "/run/media/"}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Failed to start monitor: %v", err)
	}
	defer m.Stop()

	events := m.Subscribe()
	defer m.Unsubscribe(events)

	writeTable(t, table, baseTable+
		"/dev/sdb1 /media/usb vfat rw 0 0\n"+
		"/dev/sdc1 /run/media/kiosk/CARD exfat rw 0 0\n"+
		"/dev/sdd1 /media ext4 rw 0 0\n"+
		"/dev/sde1 /mediaextra ext4 rw 0 0\n")
	m.Poll()

	got := drain(events)
	if len(got) != 2 {
		t.Fatalf("Expected 2 added events, got %+v", got)
	}
	if got[0].Type != EventAdded || got[0].Path != "/media/usb" || got[0].Device != "/dev/sdb1" {
		t.Errorf("Unexpected first event %+v", got[0])
	}
	if got[1].Path != "/run/media/kiosk/CARD" {
		t.Errorf("Unexpected second event %+v", got[1])
	}

	current := m.Current()
	if len(current) != 2 || current[0].Path != "/media/usb" {
		t.Errorf("Unexpected current mounts %+v", current)
	}

	writeTable(t, table, baseTable+"/dev/sdc1 /run/media/kiosk/CARD exfat rw 0 0\n")
	m.Poll()
	got = drain(events)
	if len(got) != 1 || got[0].Type != EventRemoved || got[0].Path != "/media/usb" {
		t.Errorf("Expected removal of /media/usb, got %+v", got)
	}

	m.Poll()
	if got := drain(events); len(got) != 0 {
		t.Errorf("Unchanged table should produce no events, got %+v", got)
	}
}

func TestStartIgnoresExistingMounts(t *testing.T) {
	table := filepath.Join(t.TempDir(), "mounts")
	writeTable(t, table, baseTable+"/dev/sdb1 /media/usb vfat rw 0 0\n")

	m := New(table, []string{"/media"}, time.Hour)
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	events := m.Subscribe()
	m.Poll()
	if got := drain(events); len(got) != 0 {
		t.Errorf("Existing mounts must not be reported, got %+v", got)
	}
	if cur := m.Current(); len(cur) != 1 || cur[0].Path != "/media/usb" {
		t.Errorf("Expected existing mount in Current, got %+v", cur)
	}
}

func TestSubscribeBeforeStart(t *testing.T) {
	table := filepath.Join(t.TempDir(), "mounts")
	writeTable(t, table, baseTable+"/dev/sdb1 /media/old vfat rw 0 0\n")

	m := New(table, []string{"/media"}, time.Hour)
	events := m.Subscribe()
	defer m.Unsubscribe(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Failed to start monitor: %v", err)
	}
	defer m.Stop()

	if got := drain(events); len(got) != 0 {
		t.Fatalf("Volumes present at start should not be reported, got %+v", got)
	}

	// A volume mounted while the caller is still busy with the initial
	// listing is queued on the subscription.
	writeTable(t, table, baseTable+
		"/dev/sdb1 /media/old vfat rw 0 0\n"+
		"/dev/sdc1 /media/usb vfat rw 0 0\n")
	m.Poll()

	got := drain(events)
	if len(got) != 1 || got[0].Type != EventAdded || got[0].Path != "/media/usb" {
		t.Fatalf("Expected one added event for /media/usb, got %+v", got)
	}
}

func TestStartFailsWithoutTable(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "missing"), []string{"/media"}, time.Hour)
	if err := m.Start(context.Background()); err == nil {
		t.Error("Expected error for missing mount table")
	}
}

func TestPollLoopDeliversEvents(t *testing.T) {
	table := filepath.Join(t.TempDir(), "mounts")
	writeTable(t, table, baseTable)

	m := New(table, []string{"/media"}, 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()
	events := m.Subscribe()

	writeTable(t, table, baseTable+"/dev/sdb1 /media/stick vfat rw 0 0\n")

	select {
	case ev := <-events:
		if ev.Type != EventAdded || ev.Path != "/media/stick" {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for mount event")
	}

	m.Stop()
	m.Stop()
}

func drain(ch chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
