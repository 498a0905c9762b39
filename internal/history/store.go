package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

const timestampLayout = "2006-01-02 15:04"

var header = []string{
	"timestamp", "review", "sentiment", "sentiment_prob",
	"authenticity", "authenticity_prob",
}

// Store is the append-only durable log of analysis records, backed by a
// single CSV file. Appends are serialized by a mutex so concurrent requests
// never interleave partial rows; each append writes one complete row and
// releases the file. There is no update or delete.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store over the CSV file at path. The file is not
// created until the first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the underlying log file.
func (s *Store) Path() string {
	return s.path
}

// Append adds one record to the end of the log. The header row is written
// before the first data row. The write is a single flushed CSV row
// performed under the store lock.
func (s *Store) Append(rec *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat history log: %w", err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write history header: %w", err)
		}
	}

	row := []string{
		rec.Timestamp.Format(timestampLayout),
		rec.Review,
		string(rec.Sentiment),
		fmt.Sprintf("%.1f", rec.SentimentProb),
		string(rec.Authenticity),
		fmt.Sprintf("%.1f", rec.AuthenticityProb),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write history row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush history row: %w", err)
	}
	return nil
}

// ReadAll returns every parseable record in the log, oldest first. A
// missing log file yields an empty slice. Malformed rows are skipped with
// a warning rather than failing the whole read.
func (s *Store) ReadAll() ([]models.AnalysisRecord, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []models.AnalysisRecord
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			metrics.HistoryRowsSkipped.Inc()
			logger.Warn("Skipping unreadable history row",
				zap.Int("line", line), zap.Error(err))
			continue
		}
		if line == 1 && len(row) > 0 && row[0] == header[0] {
			continue
		}

		rec, ok := parseRow(row, line)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// ReadAllReversed returns every parseable record newest first, for display.
func (s *Store) ReadAllReversed() ([]models.AnalysisRecord, error) {
	records, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func parseRow(row []string, line int) (models.AnalysisRecord, bool) {
	if len(row) != len(header) {
		metrics.HistoryRowsSkipped.Inc()
		logger.Warn("Skipping malformed history row",
			zap.Int("line", line), zap.Int("columns", len(row)))
		return models.AnalysisRecord{}, false
	}

	ts, err := time.ParseInLocation(timestampLayout, row[0], time.Local)
	if err != nil {
		metrics.HistoryRowsSkipped.Inc()
		logger.Warn("Skipping history row with bad timestamp",
			zap.Int("line", line), zap.String("timestamp", row[0]))
		return models.AnalysisRecord{}, false
	}

	sentProb, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		metrics.HistoryRowsSkipped.Inc()
		logger.Warn("Skipping history row with bad sentiment probability",
			zap.Int("line", line), zap.String("value", row[3]))
		return models.AnalysisRecord{}, false
	}

	authProb, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		metrics.HistoryRowsSkipped.Inc()
		logger.Warn("Skipping history row with bad authenticity probability",
			zap.Int("line", line), zap.String("value", row[5]))
		return models.AnalysisRecord{}, false
	}

	return models.AnalysisRecord{
		Timestamp:        ts,
		Review:           row[1],
		Sentiment:        models.Label(row[2]),
		SentimentProb:    sentProb,
		Authenticity:     models.Label(row[4]),
		AuthenticityProb: authProb,
	}, true
}
