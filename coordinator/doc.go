// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package coordinator orchestrates elections at the cohort level.

# Ensuring Elections

EnsureActiveElection guarantees a cohort has its seat-1 election, creating
one when absent. The cohort size is taken from the request or counted from
the roster:

	e, err := coord.EnsureActiveElection("CS", 2, 0)

# Expiry Resolution

There is no background scheduler. ResolveIfExpired tallies the election and
applies the timer-expiry transition; handlers call it when a client asks,
and the sweep calls it for every unsettled round it touches.

# The Roster Sweep

EnsureActiveElectionsForAllCohorts walks the whole roster, groups students
into (department, stage) cohorts, resolves any expired rounds, and ensures
each cohort has a seat-1 election. A persisted cooldown (6 hours) makes
over-calling harmless, so a plain cron hitting POST /maintenance/sweep is
enough to drive it.
*/
package coordinator
