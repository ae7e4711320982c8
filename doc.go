// Package httpagent is a high-level HTTP(S) client library offering
// two request modes on top of a backend-neutral transport contract
// (package backend): a terse mode for one-shot, stateless requests
// (Get, Post, Put, Patch, Delete, Head) and an Agent for stateful,
// cookie-carrying, multi-request sessions against a fixed base URL.
//
// Every call returns an HTTPResult — a facade over a three-state
// outcome (package outcome) unifying a successful response, a
// domain/backend error, and a recovered panic from deep inside the
// pipeline — rather than the usual (value, error) pair, so that a
// caller can choose to inspect, chain, or pattern-match on failure the
// same way it does on success.
package httpagent
