package ship

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/sylverant/psoserv/internal/constants"
)

// isBugReport reports whether a simple-mail packet addressed to destGC is a
// bug report rather than player mail (spec.md §4.5.3).
func isBugReport(destGC uint32) bool {
	return destGC == constants.BugReportGuildcard
}

// bugReportPath builds the on-disk path for a bug report, matching
// utils.c's dc_bug_report/pc_bug_report sprintf format exactly:
// "bugs/YYYY.MM.DD.HH.MM.SS.mmm-<guildcard>".
func bugReportPath(dir string, now time.Time, guildcard uint32) string {
	now = now.UTC()
	name := fmt.Sprintf("%04d.%02d.%02d.%02d.%02d.%02d.%03d-%d",
		now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(),
		now.Nanosecond()/1_000_000, guildcard)
	return filepath.Join(dir, name)
}

// writeBugReport persists a captured bug report to dir, transcoding PC
// report text from UTF-16LE to Shift-JIS first (utils.c's pc_bug_report).
// Write failures are returned, never surfaced as a disconnect (spec.md
// §4.5.3's "Write failures surface as the command's failure reply, never as
// disconnection").
func writeBugReport(dir string, now time.Time, guildcard uint32, playerName string, version int, text []byte, isPC bool) error {
	if isPC {
		transcoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), decodeUTF16LE(text))
		if err != nil {
			return fmt.Errorf("transcoding pc bug report text: %w", err)
		}
		text = transcoded
	}

	path := bugReportPath(dir, now, guildcard)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating bug report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bug report file: %w", err)
	}
	defer f.Close()

	header := fmt.Sprintf("Bug report from %s (%d) v%d @ %s\n\n", playerName, guildcard, version,
		now.UTC().Format("2006.01.02 15:04:05"))
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("writing bug report header: %w", err)
	}
	if _, err := f.Write(cutAtNUL(text)); err != nil {
		return fmt.Errorf("writing bug report body: %w", err)
	}
	return nil
}

// decodeUTF16LE converts a raw UTF-16LE byte slice (PC simple-mail body)
// into UTF-8 bytes, the input shape golang.org/x/text/encoding expects from
// its Shift-JIS encoder.
func decodeUTF16LE(b []byte) []byte {
	out := make([]rune, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := uint16(b[i]) | uint16(b[i+1])<<8
		if u == 0 {
			break
		}
		out = append(out, rune(u))
	}
	return []byte(string(out))
}

func cutAtNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
