// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4316)
  - StoreType: memory, sqlite, postgres, or mongo (default: sqlite)
  - DatabaseURL: Connection string (required except for memory)
  - MongoDatabase: Mongo database name (default: classreps)
  - SessionTokenSalt: Secret for session token HMAC (required)
  - AMQPURL: RabbitMQ URL, empty disables notifications
  - NotifyExchange: Topic exchange name (default: notifications)

# CLI Flags

	-p               Server port
	-s               Store type
	-d               Database URL
	-mongo-db        Mongo database name
	-session-salt    Session token salt
	-amqp-url        RabbitMQ URL
	-notify-exchange Notification exchange

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	STORE_TYPE         → -s
	DATABASE_URL       → -d
	MONGO_DATABASE     → -mongo-db
	SESSION_TOKEN_SALT → -session-salt
	AMQP_URL           → -amqp-url
	NOTIFY_EXCHANGE    → -notify-exchange

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - SESSION_TOKEN_SALT must be provided
  - DATABASE_URL must be provided unless the store type is memory
  - STORE_TYPE must be one of the known backends
*/
package cliparse
