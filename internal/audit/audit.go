package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jwaldner/optionlab/internal/logger"
)

// Trail collects named sections of calculation data for one ticker and writes them
// as JSON plus a markdown summary when finalized.
type Trail struct {
	dir      string
	ticker   string
	started  time.Time
	sections map[string]section
	mutex    sync.Mutex
	log      *logrus.Entry
	now      func() time.Time
}

type section struct {
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// New starts a trail that will be written under dir.
func New(dir, ticker string) *Trail {
	if ticker == "" {
		ticker = "strategy"
	}
	t := &Trail{
		dir:      dir,
		ticker:   ticker,
		sections: make(map[string]section),
		log:      logger.WithComponent("audit").WithField("ticker", ticker),
		now:      time.Now,
	}
	t.started = t.now()
	return t
}

// AddSection records data under name, replacing any previous section of that name.
func (t *Trail) AddSection(name string, data interface{}) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.sections[name] = section{Timestamp: t.now().Format(time.RFC3339), Data: data}
	t.log.WithField("section", name).Debug("audit section added")
}

// Finalize writes audit_<ticker>_<timestamp>.json and .md and returns their paths.
func (t *Trail) Finalize() (string, string, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	completed := t.now()
	base := fmt.Sprintf("audit_%s_%s", t.ticker, completed.Format("2006-01-02_15-04-05"))
	jsonPath := filepath.Join(t.dir, base+".json")
	mdPath := filepath.Join(t.dir, base+".md")

	doc := map[string]interface{}{
		"ticker":          t.ticker,
		"audit_started":   t.started.Format(time.RFC3339),
		"audit_completed": completed.Format(time.RFC3339),
		"sections":        t.sections,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode audit: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write audit json: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(t.markdown(completed)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write audit markdown: %w", err)
	}

	t.log.WithField("path", jsonPath).Info("audit written")
	return jsonPath, mdPath, nil
}

func (t *Trail) markdown(generated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Audit Summary - %s\n\n", t.ticker)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generated.Format("2006-01-02 15:04:05"))

	names := make([]string, 0, len(t.sections))
	for name := range t.sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := t.sections[name]
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "**Timestamp:** %s\n\n", s.Timestamp)
		b.WriteString("```json\n")
		if data, err := json.MarshalIndent(s.Data, "", "  "); err == nil {
			b.Write(data)
		}
		b.WriteString("\n```\n\n")
	}
	return b.String()
}
