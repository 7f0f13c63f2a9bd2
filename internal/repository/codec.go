package repository

import (
	"encoding/json"
	"fmt"
	"strconv"

	"qrstats/internal/domain"
)

// EncodeRecord serializes a record for key/value storage
func EncodeRecord(record *domain.TargetRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode target %s: %w", record.ID, err)
	}
	return data, nil
}

// DecodeRecord parses a stored record. A payload without id or url is rejected
// so callers never see a partial record.
func DecodeRecord(data []byte) (*domain.TargetRecord, error) {
	var record domain.TargetRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode target: %w", err)
	}
	if record.ID == "" || record.URL == "" {
		return nil, fmt.Errorf("decode target: incomplete record")
	}
	return &record, nil
}

// DecodeCount parses a stored decimal count
func DecodeCount(data []byte) (int64, error) {
	count, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	if count < 0 {
		return 0, fmt.Errorf("decode count: negative value %d", count)
	}
	return count, nil
}

// EncodeCount serializes a count as a decimal string
func EncodeCount(count int64) []byte {
	return []byte(strconv.FormatInt(count, 10))
}
