package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPaymentStatus(t *testing.T) {
	tests := []struct {
		name    string
		gateway string
		want    string
	}{
		{"approved maps to pagado", "approved", "pagado"},
		{"pending maps to pendiente_pago", "pending", "pendiente_pago"},
		{"in_process maps to en_revision", "in_process", "en_revision"},
		{"rejected maps to cancelado", "rejected", "cancelado"},
		{"unknown status passes through verbatim", "charged_back", "charged_back"},
		{"absent status counts as pending", "", "pendiente_pago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapPaymentStatus(tt.gateway))
		})
	}
}
