// Package main implements hailstorm, a CLI that solves the hailstone puzzle
// of Advent of Code 2023 day 24.
//
// # Features
//
//   - Finds the rock position and velocity that hit every hailstone, using
//     an exact in-process polynomial solver, an external z3, or a linear
//     algebra route
//   - Counts pairwise path crossings inside a test area
//   - Downloads and caches the puzzle input with the session cookie
//   - Submits answers and waits out the site's rate limit
//
// # Usage
//
//	hailstorm rock  [--config PATH] [--input PATH] [--backend builtin|z3|linalg] [--submit]
//	hailstorm cross [--config PATH] [--input PATH] [--min N] [--max N] [--submit]
//
// The answer is printed as a single "Answer=<n>" line on stdout. Logs go to
// stderr.
//
// # Configuration
//
// Configuration is loaded from config.json in the current directory or the
// directory named by the HAILSTORM_HOME environment variable. AOC_SESSION
// overrides the stored session, and a .env file is read at startup.
package main
