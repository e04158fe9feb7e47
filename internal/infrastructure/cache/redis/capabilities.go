package redis

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Capabilities describes optional backend features detected at startup.
type Capabilities struct {
	// Cluster is true when keys are spread over several masters.
	Cluster bool
	// Unlink is true when the backend accepts UNLINK for non-blocking deletes.
	Unlink bool
}

// negotiate probes the backend once. A failed probe leaves the feature off.
func negotiate(ctx context.Context, client redis.UniversalClient) Capabilities {
	caps := conservative(client)

	probe := "__capabilities__:" + uuid.NewString()
	if err := client.Unlink(ctx, probe).Err(); err == nil {
		caps.Unlink = true
	}

	return caps
}

// conservative returns the capabilities assumed without probing the backend.
func conservative(client redis.UniversalClient) Capabilities {
	_, cluster := client.(*redis.ClusterClient)
	return Capabilities{Cluster: cluster}
}
