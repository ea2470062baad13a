package providers

import "time"

// shutdownTimeout bounds how long a handle's Shutdown may block.
const shutdownTimeout = 30 * time.Second
