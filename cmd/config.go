package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,required=true"`
	Port                 int           `env:"PORT,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	CodeAttempts         int           `env:"CODE_GENERATION_ATTEMPTS,required=true"`
	HistoryPageSize      int           `env:"HISTORY_PAGE_SIZE,required=true"`
	PurgeRetries         int           `env:"PURGE_RETRIES,required=true"`
	PurgeRetryDelay      time.Duration `env:"PURGE_RETRY_DELAY,required=true"`
	AuthSecret           string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	DebugPort            *int          `env:"DEBUG_PORT"`
}
