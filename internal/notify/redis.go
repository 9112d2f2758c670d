package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"medidocs/internal/service"
)

// RedisNotifier publishes events as JSON for connected inbox clients
type RedisNotifier struct {
	async
	client *redis.Client
	prefix string
}

// NewRedisNotifier creates a notifier publishing on <prefix>:user:<id> and <prefix>:department:<name>
func NewRedisNotifier(client *redis.Client, prefix string) *RedisNotifier {
	n := &RedisNotifier{client: client, prefix: prefix}
	n.async = async{name: "redis", deliver: n.deliver}
	return n
}

// UserChannel returns the channel carrying a user's events
func (n *RedisNotifier) UserChannel(userID string) string {
	return fmt.Sprintf("%s:user:%s", n.prefix, userID)
}

// DepartmentChannel returns the channel carrying a department's events
func (n *RedisNotifier) DepartmentChannel(department string) string {
	return fmt.Sprintf("%s:department:%s", n.prefix, department)
}

func (n *RedisNotifier) deliver(ctx context.Context, event service.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	var channel string
	switch {
	case event.RecipientID != "":
		channel = n.UserChannel(event.RecipientID)
	case event.RecipientDepartment != "":
		channel = n.DepartmentChannel(event.RecipientDepartment)
	default:
		return nil
	}

	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}
