package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

func TestTaskList_LimitAndOffset(t *testing.T) {
	ctx := context.Background()
	tasks := New().Tasks()
	for i := 0; i < 600; i++ {
		_, err := tasks.Create(ctx, &domain.Task{Title: fmt.Sprintf("t%d", i), Status: domain.StatusDraft, UserID: "u1"})
		require.NoError(t, err)
	}

	all, err := tasks.List(ctx, repository.TaskFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, all, 600, "zero limit is unbounded")

	page, err := tasks.List(ctx, repository.TaskFilter{UserID: "u1", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "t1", page[0].Title)
	assert.Equal(t, "t2", page[1].Title)
}
