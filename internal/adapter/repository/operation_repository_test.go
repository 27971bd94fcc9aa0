package repository

import (
	"testing"

	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildFilter(t *testing.T) {
	kind := domain.OperationMergePDF
	status := domain.OperationStatusFailed

	tests := []struct {
		name      string
		filter    domain.OperationFilter
		wantWhere string
		wantArgs  []any
	}{
		{name: "empty", filter: domain.OperationFilter{}, wantWhere: ""},
		{
			name:      "kind",
			filter:    domain.OperationFilter{Kind: &kind},
			wantWhere: " WHERE kind = $1",
			wantArgs:  []any{kind},
		},
		{
			name:      "kind and status",
			filter:    domain.OperationFilter{Kind: &kind, Status: &status},
			wantWhere: " WHERE kind = $1 AND status = $2",
			wantArgs:  []any{kind, status},
		},
		{
			name:      "status",
			filter:    domain.OperationFilter{Status: &status},
			wantWhere: " WHERE status = $1",
			wantArgs:  []any{status},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildFilter(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
