// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify fans user notifications out to the rest of the system.

AMQPNotifier publishes JSON messages to a durable RabbitMQ topic exchange
with routing key "user.<userID>", so downstream consumers (push gateways,
websocket bridges) can bind per-user or with a wildcard:

	n, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.NotifyExchange)

Noop drops everything and is the default when no AMQP URL is configured.

Notification types:

	TypeVoteStarted - an election clock started ticking
	TypeReselection - a reselection round replaced a sitting result
*/
package notify
