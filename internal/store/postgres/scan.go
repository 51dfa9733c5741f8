package postgres

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"scholarshipserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

func textOrEmpty(t pgtype.Text) string {
	if t.Valid {
		return t.String
	}
	return ""
}

func timestamptzPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}

func uuidOrEmpty(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuidBytesToString(u.Bytes)
}

func uuidBytesToString(b [16]byte) string {
	var buf [36]byte
	hex.Encode(buf[0:8], b[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], b[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], b[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], b[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], b[10:16])
	return string(buf[:])
}

func agendaToJSON(items []domain.AgendaItem) ([]byte, error) {
	if items == nil {
		items = []domain.AgendaItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal agenda: %w", err)
	}
	return raw, nil
}

func agendaFromJSON(raw []byte) ([]domain.AgendaItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []domain.AgendaItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal agenda: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
