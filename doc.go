// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Class Reps API server.

Class Reps runs class-representative elections per (department, stage)
cohort: up to three seats, one active election per seat, with re-votes,
automatic tiebreakers, and petition-style reselection.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL="file:reps.db" SESSION_TOKEN_SALT=secret go run main.go

Or with flags:

	go run main.go -p 4316 -s postgres -d "postgres://..." -session-salt secret

# Configuration

Required settings:

  - SESSION_TOKEN_SALT (-session-salt): Secret for session token HMAC
  - DATABASE_URL (-d): Connection string (not needed for -s memory)

Optional settings:

  - PORT (-p): Server port (default: 4316)
  - STORE_TYPE (-s): memory, sqlite, postgres, or mongo (default: sqlite)
  - MONGO_DATABASE (-mongo-db): Mongo database name (default: classreps)
  - AMQP_URL (-amqp-url): Enable RabbitMQ notifications
  - NOTIFY_EXCHANGE (-notify-exchange): Topic exchange name

# Architecture

The server uses a handler-based architecture with dependency injection:

  - docstore: Document store abstraction (memory, SQL, MongoDB)
  - election: Election lifecycle state machine
  - vote: Vote ledger and tallying
  - coordinator: Cohort-level orchestration and the roster sweep
  - roster: Student lookup
  - notify: Fan-out notifications (AMQP or no-op)
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: Session token generation and validation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
