package dto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planup/internal/handlers/dto"
	"planup/internal/models/task"
)

func TestTaskRequest_ToInput(t *testing.T) {
	tests := []struct {
		name    string
		request dto.TaskRequest
		wantErr error
	}{
		{
			name:    "empty name",
			request: dto.TaskRequest{TaskName: "  "},
			wantErr: task.ErrEmptyName,
		},
		{
			name:    "name over 32 characters",
			request: dto.TaskRequest{TaskName: strings.Repeat("x", 33)},
			wantErr: dto.ErrNameTooLong,
		},
		{
			name:    "name of exactly 32 characters",
			request: dto.TaskRequest{TaskName: strings.Repeat("я", 32)},
		},
		{
			name: "long sub-task name",
			request: dto.TaskRequest{
				TaskName: "Write report",
				SubTasks: []dto.SubTaskRequest{{Name: strings.Repeat("x", 40)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := tt.request.ToInput()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.request.TaskName, in.Name)
			require.Len(t, in.SubTasks, len(tt.request.SubTasks))
			for i, sub := range tt.request.SubTasks {
				assert.Equal(t, sub.Name, in.SubTasks[i].Name)
			}
		})
	}
}
