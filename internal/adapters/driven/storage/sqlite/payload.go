package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// marshalPayload encodes a job payload for column storage.
func marshalPayload(p domain.JobPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshalling payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload decodes a stored job payload.
func unmarshalPayload(data string, p *domain.JobPayload) error {
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return fmt.Errorf("unmarshaling payload: %w", err)
	}
	return nil
}
