package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskhub/taskhub-cli/internal/model"
)

// Tasks returns the tasks visible to the current user.
func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	env, err := c.Get(ctx, "/tasks", true)
	if err != nil {
		return nil, err
	}

	var tasks []model.Task
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &tasks); err != nil {
			return nil, fmt.Errorf("decoding task list: %w", err)
		}
	}
	return tasks, nil
}
