// Package cleanup provides the background expiry worker and its console reporter
package cleanup

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/types"
)

const (
	cyan     = "\033[38;2;86;182;194m"
	dimCyan  = "\033[38;2;47;91;102m"
	grey     = "\033[38;2;110;118;129m"
	dimGrey  = "\033[38;2;75;82;99m"
	success  = "\033[38;2;62;130;144m"
	warning  = "\033[38;2;229;192;123m"
	errorRed = "\033[38;2;224;108;117m"
	white    = "\033[38;2;171;178;191m"
	reset    = "\033[0m"
	bold     = "\033[1m"
)

// Reporter prints startup and cleanup progress to a terminal
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

func (r *Reporter) LogHeader(title string) {
	fmt.Fprintf(r.out, "%s%s✓ %s %s\n", bold, cyan, strings.ToUpper(title), reset)
}

func (r *Reporter) LogStepSuccess(message string, args ...any) {
	fmt.Fprintf(r.out, "%s⚡ %s%s...%s\n", dimGrey, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogStage(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogSuccess(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, white, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogError(message string, err error) {
	fmt.Fprintf(r.out, "%s%s✖ ERROR: %s%s: %v%s\n", bold, errorRed, grey, message, err, reset)
}

func (r *Reporter) LogWarning(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s⚠ WARNING: %s%s%s\n", bold, warning, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogInfo(message string, args ...any) {
	fmt.Fprintf(r.out, "%s▶ %s%s%s\n", dimGrey, grey, fmt.Sprintf(message, args...), reset)
}

// GenerateReport renders one line per store
func (r *Reporter) GenerateReport(stats []types.CacheStats) string {
	var report strings.Builder
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 MST")
	report.WriteString(fmt.Sprintf("%s%s▓ %s | Caches%s\n", bold, dimCyan, timestamp, reset))
	for _, s := range stats {
		status := success + "OK"
		if s.Expired > 0 {
			status = warning + fmt.Sprintf("%d EXPIRED", s.Expired)
		}
		report.WriteString(fmt.Sprintf("  %s%-10s%s entries: %s%d%s  ttl: %s  %s%s\n",
			grey, s.Name, reset, white, s.Entries, reset, s.TTL, status, reset))
	}
	return report.String()
}
