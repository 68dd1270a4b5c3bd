package repository

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gcp-panel/backend/internal/models"
)

// maxAuditEntries caps how many entries a read returns.
const maxAuditEntries = 100

// AuditLog appends structured audit records to a newline-delimited
// JSON file. Entries are never edited or deleted by the server.
type AuditLog struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// NewAuditLog creates an AuditLog writing to audit.log under dir.
func NewAuditLog(dir string, log *zap.Logger) *AuditLog {
	return &AuditLog{path: filepath.Join(dir, "audit.log"), log: log}
}

// Append writes one audit entry. detail may be a string or any
// JSON-encodable value; non-strings are stored JSON-encoded. Append
// failures are logged, never surfaced: auditing must not block the
// action it records.
func (a *AuditLog) Append(ip, action string, detail any) {
	text, ok := detail.(string)
	if !ok {
		if data, err := json.Marshal(detail); err == nil {
			text = string(data)
		}
	}
	entry := models.AuditEntry{
		Time:   time.Now().UTC().Format(time.RFC3339),
		IP:     ip,
		Action: action,
		Detail: text,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		a.log.Error("failed to encode audit entry", zap.Error(err))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		a.log.Error("failed to open audit log", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		a.log.Error("failed to append audit entry", zap.Error(err))
	}
}

// Recent returns at most the last 100 entries, newest first. Lines
// that do not parse (e.g. a crashed partial write) are skipped.
func (a *AuditLog) Recent() []models.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if err != nil {
		return []models.AuditEntry{}
	}
	defer f.Close()

	var entries []models.AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry models.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) > maxAuditEntries {
		entries = entries[len(entries)-maxAuditEntries:]
	}
	// newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}
