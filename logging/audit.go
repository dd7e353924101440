package logging

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"casa8_ingest/models"
)

// AuditRecord is one JSON-lines entry appended after each sync run.
type AuditRecord struct {
	RunID        string          `json:"run_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Mode         models.RunMode  `json:"mode"`
	SourceMarket string          `json:"source_market"`
	Result       json.RawMessage `json:"result"`
}

// AppendAudit appends a run record to the local audit log. Audit
// failures are reported but never fail the run itself.
func AppendAudit(path string, mode models.RunMode, sourceMarket string, result *models.ImportResult) error {
	record := AuditRecord{
		RunID:        uuid.New().String(),
		Timestamp:    time.Now(),
		Mode:         mode,
		SourceMarket: sourceMarket,
		Result:       result.ToJSON(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(data, '\n'))
	return err
}
