// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package roster looks up students and cohorts. The only implementation,
// StoreRoster, reads the students collection of the document store;
// deployments with an external user service can provide their own Roster.
package roster
