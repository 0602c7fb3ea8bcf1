package model

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// RevenueReport encodes as a JSON object whose keys keep the slice order.
type RevenueReport []MonthRevenue

func (r RevenueReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, row := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(row.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(row.Revenue.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type TopCustomer struct {
	ID        uuid.UUID   `json:"_id"`
	TotalCost json.Number `json:"totalCost"`
}

func NewTopCustomers(rows []CustomerSpend) []TopCustomer {
	out := make([]TopCustomer, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopCustomer{ID: row.Customer, TotalCost: json.Number(row.TotalCost.String())})
	}
	return out
}
